package payroll

import (
	"errors"
	"math"
	"testing"
)

func TestParseNegativePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    NegativePolicy
		wantErr bool
	}{
		{input: "", want: PolicyAllow},
		{input: "allow", want: PolicyAllow},
		{input: " Reject ", want: PolicyReject},
		{input: "CLAMP", want: PolicyClamp},
		{input: "ignore", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseNegativePolicy(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownPolicy) {
					t.Fatalf("expected ErrUnknownPolicy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCalculatorNegativePolicies(t *testing.T) {
	employee := Employee{ID: "e1", Name: "Ana", BaseSalary: 240000, OvertimeHours: -2, Absences: 1}

	allow, err := NewCalculator(PolicyAllow).Calculate(employee, nil)
	if err != nil {
		t.Fatalf("allow: unexpected error: %v", err)
	}
	if allow.OvertimePayment != -3000 {
		t.Fatalf("allow: expected overtime -3000, got %v", allow.OvertimePayment)
	}

	clamp, err := NewCalculator(PolicyClamp).Calculate(employee, nil)
	if err != nil {
		t.Fatalf("clamp: unexpected error: %v", err)
	}
	if clamp.OvertimePayment != 0 {
		t.Fatalf("clamp: expected overtime 0, got %v", clamp.OvertimePayment)
	}
	if clamp.AbsenceDeduction != 8000 {
		t.Fatalf("clamp: expected absence deduction 8000, got %v", clamp.AbsenceDeduction)
	}

	_, err = NewCalculator(PolicyReject).Calculate(employee, nil)
	if !errors.Is(err, ErrNegativeValue) {
		t.Fatalf("reject: expected ErrNegativeValue, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "overtimeHours" {
		t.Fatalf("reject: expected validation error on overtimeHours, got %v", err)
	}
}

func TestCalculatorRejectsMalformedRecords(t *testing.T) {
	calculator := NewCalculator(PolicyAllow)
	tests := []struct {
		name     string
		employee Employee
		advances []Advance
		field    string
		sentinel error
	}{
		{
			name:     "missing name",
			employee: Employee{ID: "e1"},
			field:    "name",
			sentinel: ErrInvalidEmployee,
		},
		{
			name:     "not a number salary",
			employee: Employee{ID: "e1", Name: "Ana", BaseSalary: math.NaN()},
			field:    "baseSalary",
			sentinel: ErrInvalidEmployee,
		},
		{
			name:     "infinite absences",
			employee: Employee{ID: "e1", Name: "Ana", Absences: math.Inf(1)},
			field:    "absences",
			sentinel: ErrInvalidEmployee,
		},
		{
			name:     "bad status",
			employee: Employee{ID: "e1", Name: "Ana", Status: "on-leave"},
			field:    "status",
			sentinel: ErrInvalidEmployee,
		},
		{
			name:     "advance amount not finite",
			employee: Employee{ID: "e1", Name: "Ana"},
			advances: []Advance{{EmployeeID: "e1", Amount: math.Inf(-1)}},
			field:    "amount",
			sentinel: ErrInvalidAdvance,
		},
		{
			name:     "advance without employee",
			employee: Employee{ID: "e1", Name: "Ana", BaseSalary: 1000},
			advances: []Advance{{EmployeeID: "", Amount: 10}},
			field:    "employeeId",
			sentinel: ErrInvalidAdvance,
		},
		{
			name:     "gross pay overflows",
			employee: Employee{ID: "e1", Name: "Ana", BaseSalary: 1e308, TransportAllowance: 1e308},
			field:    "grossPay",
			sentinel: ErrAmountOverflow,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := calculator.Calculate(tc.employee, tc.advances)
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestCalculatorSkipsOtherEmployeesMalformedAdvances(t *testing.T) {
	employee := Employee{ID: "e1", Name: "Ana", BaseSalary: 1000}
	advances := []Advance{{EmployeeID: "e2", Amount: math.NaN()}, {EmployeeID: "e1", Amount: 100}}

	calc, err := NewCalculator(PolicyAllow).Calculate(employee, advances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calc.NetPay != 900 {
		t.Fatalf("expected net 900, got %v", calc.NetPay)
	}
}
