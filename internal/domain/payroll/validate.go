package payroll

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Calculator validates raw records and applies the negative value policy
// before delegating to Compute.
type Calculator struct {
	Policy   NegativePolicy
	validate *validator.Validate
}

func NewCalculator(policy NegativePolicy) *Calculator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	if policy == "" {
		policy = PolicyAllow
	}
	return &Calculator{Policy: policy, validate: v}
}

func (c *Calculator) Calculate(employee Employee, advances []Advance) (Calculation, error) {
	if err := c.ValidateEmployee(employee); err != nil {
		return Calculation{}, err
	}
	// An advance without an owner is malformed whoever it belongs to; the
	// remaining checks only apply to this employee's advances.
	for _, advance := range advances {
		if strings.TrimSpace(advance.EmployeeID) == "" {
			return Calculation{}, &ValidationError{Field: "employeeId", Reason: reasonFor("required"), Err: ErrInvalidAdvance}
		}
		if advance.EmployeeID != employee.ID {
			continue
		}
		if err := c.validateRecord(advance, ErrInvalidAdvance); err != nil {
			return Calculation{}, err
		}
	}
	adjusted, err := c.Policy.apply(employee)
	if err != nil {
		return Calculation{}, err
	}
	calc := Compute(adjusted, advances)
	if err := checkFinite(calc); err != nil {
		return Calculation{}, err
	}
	return calc, nil
}

// checkFinite catches finite inputs whose sums overflow.
func checkFinite(calc Calculation) error {
	results := []struct {
		field string
		value float64
	}{
		{"overtimePayment", calc.OvertimePayment},
		{"totalAdvances", calc.TotalAdvances},
		{"absenceDeduction", calc.AbsenceDeduction},
		{"grossPay", calc.GrossPay},
		{"netPay", calc.NetPay},
	}
	for _, r := range results {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) {
			return &ValidationError{Field: r.field, Reason: reasonFor("finite"), Err: ErrAmountOverflow}
		}
	}
	return nil
}

func (c *Calculator) ValidateEmployee(employee Employee) error {
	return c.validateRecord(employee, ErrInvalidEmployee)
}

func (c *Calculator) validateRecord(record any, sentinel error) error {
	err := c.validate.Struct(record)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return &ValidationError{Field: first.Field(), Reason: reasonFor(first.Tag()), Err: sentinel}
	}
	return &ValidationError{Field: "record", Reason: err.Error(), Err: sentinel}
}

func reasonFor(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "finite":
		return "must be a finite number"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "has an unsupported value"
	default:
		return "failed " + tag + " check"
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
