package payroll

import "context"

// Store is the read-only record source for payroll. Records are owned and
// written elsewhere.
type Store interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	ListAdvances(ctx context.Context) ([]Advance, error)
	GetCompanyProfile(ctx context.Context) (CompanyProfile, error)
}
