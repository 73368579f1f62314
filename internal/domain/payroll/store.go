package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool used by PGStore.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PGStore struct {
	DB Querier
}

func NewPGStore(db Querier) *PGStore {
	return &PGStore{DB: db}
}

const employeeColumns = `
    id, name, COALESCE(position, ''),
    base_salary, transport_allowance, food_allowance,
    overtime_hours, absences,
    hire_date, COALESCE(email, ''), COALESCE(phone, ''), status`

func (s *PGStore) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `SELECT`+employeeColumns+`
    FROM employees
    ORDER BY name, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (s *PGStore) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `SELECT`+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, employeeID)
	employee, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return employee, err
}

func (s *PGStore) ListAdvances(ctx context.Context) ([]Advance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, amount, advance_date,
           COALESCE(description, ''), COALESCE(approved_by, '')
    FROM advances
    ORDER BY advance_date, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advances []Advance
	for rows.Next() {
		var advance Advance
		if err := rows.Scan(&advance.ID, &advance.EmployeeID, &advance.Amount, &advance.Date, &advance.Description, &advance.ApprovedBy); err != nil {
			return nil, err
		}
		advances = append(advances, advance)
	}
	return advances, rows.Err()
}

func (s *PGStore) GetCompanyProfile(ctx context.Context) (CompanyProfile, error) {
	var profile CompanyProfile
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(address, ''), COALESCE(nif, ''),
           COALESCE(phone, ''), COALESCE(email, ''),
           COALESCE(city, ''), COALESCE(country, '')
    FROM company_profiles
    ORDER BY created_at
    LIMIT 1
  `).Scan(&profile.ID, &profile.Name, &profile.Address, &profile.NIF, &profile.Phone, &profile.Email, &profile.City, &profile.Country)
	if errors.Is(err, pgx.ErrNoRows) {
		return CompanyProfile{}, ErrCompanyProfileNotFound
	}
	if err != nil {
		return CompanyProfile{}, err
	}
	return profile, nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var employee Employee
	var hireDate *time.Time
	err := row.Scan(
		&employee.ID, &employee.Name, &employee.Position,
		&employee.BaseSalary, &employee.TransportAllowance, &employee.FoodAllowance,
		&employee.OvertimeHours, &employee.Absences,
		&hireDate, &employee.Email, &employee.Phone, &employee.Status,
	)
	if err != nil {
		return Employee{}, err
	}
	if hireDate != nil {
		employee.HireDate = *hireDate
	}
	return employee, nil
}
