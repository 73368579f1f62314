package payroll

import (
	"fmt"
	"strings"
)

// NegativePolicy decides what happens to negative salary, overtime and
// absence values before they reach Compute.
type NegativePolicy string

const (
	PolicyAllow  NegativePolicy = "allow"
	PolicyReject NegativePolicy = "reject"
	PolicyClamp  NegativePolicy = "clamp"
)

func ParseNegativePolicy(value string) (NegativePolicy, error) {
	switch NegativePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyAllow:
		return PolicyAllow, nil
	case PolicyReject:
		return PolicyReject, nil
	case PolicyClamp:
		return PolicyClamp, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
	}
}

func (p NegativePolicy) apply(employee Employee) (Employee, error) {
	fields := []struct {
		name  string
		value *float64
	}{
		{"baseSalary", &employee.BaseSalary},
		{"overtimeHours", &employee.OvertimeHours},
		{"absences", &employee.Absences},
	}
	for _, field := range fields {
		if *field.value >= 0 {
			continue
		}
		switch p {
		case PolicyReject:
			return Employee{}, &ValidationError{Field: field.name, Reason: "must not be negative", Err: ErrNegativeValue}
		case PolicyClamp:
			*field.value = 0
		}
	}
	return employee, nil
}
