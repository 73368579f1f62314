package payroll

import "time"

type Employee struct {
	ID                 string    `json:"id" validate:"required"`
	Name               string    `json:"name" validate:"required"`
	Position           string    `json:"position"`
	BaseSalary         float64   `json:"baseSalary" validate:"finite"`
	TransportAllowance float64   `json:"transportAllowance" validate:"finite"`
	FoodAllowance      float64   `json:"foodAllowance" validate:"finite"`
	OvertimeHours      float64   `json:"overtimeHours" validate:"finite"`
	Absences           float64   `json:"absences" validate:"finite"`
	HireDate           time.Time `json:"hireDate"`
	Email              string    `json:"email" validate:"omitempty,email"`
	Phone              string    `json:"phone"`
	Status             string    `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (e Employee) Active() bool {
	return e.Status != StatusInactive
}

type Advance struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId" validate:"required"`
	Amount      float64   `json:"amount" validate:"finite"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	ApprovedBy  string    `json:"approvedBy"`
}

type CompanyProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	NIF     string `json:"nif"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Calculation is derived on every query and never stored.
type Calculation struct {
	EmployeeID         string  `json:"employeeId"`
	BaseSalary         float64 `json:"baseSalary"`
	TransportAllowance float64 `json:"transportAllowance"`
	FoodAllowance      float64 `json:"foodAllowance"`
	OvertimePayment    float64 `json:"overtimePayment"`
	TotalAdvances      float64 `json:"totalAdvances"`
	AbsenceDeduction   float64 `json:"absenceDeduction"`
	GrossPay           float64 `json:"grossPay"`
	NetPay             float64 `json:"netPay"`
}

func (c Calculation) TotalDeductions() float64 {
	return c.TotalAdvances + c.AbsenceDeduction
}

type SummaryFilter struct {
	Search string
	SortBy string
	Order  string
}

type SummaryRow struct {
	Employee    Employee    `json:"employee"`
	Calculation Calculation `json:"calculation"`
}

type Summary struct {
	Rows          []SummaryRow `json:"rows"`
	EmployeeCount int          `json:"employeeCount"`
	TotalPayroll  float64      `json:"totalPayroll"`
	TotalAdvances float64      `json:"totalAdvances"`
}
