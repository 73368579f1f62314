package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"folha/internal/domain/auth"
	"folha/internal/domain/payroll"
	"folha/internal/platform/config"
)

// devSeedPassword is used for the demo users outside production when
// SEED_ADMIN_PASSWORD is empty.
const devSeedPassword = "folha-demo"

// DemoData is the company, staff and advances loaded into an empty database.
type DemoData struct {
	Company   payroll.CompanyProfile
	Employees []payroll.Employee
	Advances  []payroll.Advance
	Users     []auth.User
}

func Demo() DemoData {
	date := func(value string) time.Time {
		t, _ := time.Parse(time.DateOnly, value)
		return t
	}
	return DemoData{
		Company: payroll.CompanyProfile{
			ID:      "1",
			Name:    "TALO E CHURRASCARIA COSTA",
			Address: "Av. Pedro de Castro Van Dunem-Loy, 171, Palanca-Luanda",
			NIF:     "5417123456",
			Phone:   "+244 923 456 789",
			Email:   "info@taloechurrascaria.ao",
			City:    "Luanda",
			Country: "Angola",
		},
		Employees: []payroll.Employee{
			{
				ID: "1", Name: "João Carlos Rodrigues", Position: "Desenvolvedor Senior",
				BaseSalary: 450000, TransportAllowance: 25000, FoodAllowance: 20000, OvertimeHours: 8,
				HireDate: date("2023-01-15"), Email: "joao.carlos@company.com", Phone: "+244 923 123 456",
				Status: payroll.StatusActive,
			},
			{
				ID: "2", Name: "Maria Alejandra Gomes", Position: "Analista de Dados",
				BaseSalary: 320000, TransportAllowance: 25000, FoodAllowance: 20000, OvertimeHours: 4, Absences: 1,
				HireDate: date("2023-03-10"), Email: "maria.gomes@company.com", Phone: "+244 924 987 654",
				Status: payroll.StatusActive,
			},
			{
				ID: "3", Name: "Carlos Eduardo Martinez", Position: "Gerente de Projetos",
				BaseSalary: 550000, TransportAllowance: 25000, FoodAllowance: 20000, OvertimeHours: 12,
				HireDate: date("2022-11-05"), Email: "carlos.martinez@company.com", Phone: "+244 925 456 789",
				Status: payroll.StatusActive,
			},
		},
		Advances: []payroll.Advance{
			{ID: "1", EmployeeID: "1", Amount: 50000, Date: date("2024-01-15"), Description: "Adiantamento para despesas médicas", ApprovedBy: "Admin"},
			{ID: "2", EmployeeID: "2", Amount: 30000, Date: date("2024-01-10"), Description: "Adiantamento quinzenal", ApprovedBy: "HR"},
		},
		Users: []auth.User{
			{ID: "1", Username: "admin", Name: "Administrador Sistema", Email: "admin@company.com", Role: auth.RoleAdmin},
			{ID: "2", Username: "hr", Name: "Recursos Humanos", Email: "hr@company.com", Role: auth.RoleHR},
			{ID: "3", Username: "viewer", Name: "Apenas Leitura", Email: "viewer@company.com", Role: auth.RoleViewer},
		},
	}
}

// SeedPassword returns the password given to demo users, or "" when users
// must not be seeded.
func SeedPassword(cfg config.Config) string {
	if strings.TrimSpace(cfg.SeedAdminPassword) != "" {
		return cfg.SeedAdminPassword
	}
	if cfg.Production() {
		return ""
	}
	return devSeedPassword
}

// HashedUsers returns the demo users with password hashes set.
func (d DemoData) HashedUsers(password string) ([]auth.User, error) {
	if password == "" {
		return nil, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	users := make([]auth.User, len(d.Users))
	for i, user := range d.Users {
		user.PasswordHash = hash
		users[i] = user
	}
	return users, nil
}

// Seed inserts the demo data. Existing rows are left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, logger *zap.Logger) error {
	demo := Demo()

	c := demo.Company
	if _, err := pool.Exec(ctx, `
    INSERT INTO company_profiles (id, name, address, nif, phone, email, city, country)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (id) DO NOTHING
  `, c.ID, c.Name, c.Address, c.NIF, c.Phone, c.Email, c.City, c.Country); err != nil {
		return err
	}

	for _, e := range demo.Employees {
		if _, err := pool.Exec(ctx, `
      INSERT INTO employees (id, name, position, base_salary, transport_allowance, food_allowance,
                             overtime_hours, absences, hire_date, email, phone, status)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
      ON CONFLICT (id) DO NOTHING
    `, e.ID, e.Name, e.Position, e.BaseSalary, e.TransportAllowance, e.FoodAllowance,
			e.OvertimeHours, e.Absences, e.HireDate, e.Email, e.Phone, e.Status); err != nil {
			return err
		}
	}

	for _, a := range demo.Advances {
		if _, err := pool.Exec(ctx, `
      INSERT INTO advances (id, employee_id, amount, advance_date, description, approved_by)
      VALUES ($1,$2,$3,$4,$5,$6)
      ON CONFLICT (id) DO NOTHING
    `, a.ID, a.EmployeeID, a.Amount, a.Date, a.Description, a.ApprovedBy); err != nil {
			return err
		}
	}

	users, err := demo.HashedUsers(SeedPassword(cfg))
	if err != nil {
		return err
	}
	if users == nil {
		logger.Warn("demo users not seeded: SEED_ADMIN_PASSWORD is empty")
	}
	for _, u := range users {
		if _, err := pool.Exec(ctx, `
      INSERT INTO users (id, username, password_hash, role, name, email)
      VALUES ($1,$2,$3,$4,$5,$6)
      ON CONFLICT (username) DO NOTHING
    `, u.ID, u.Username, u.PasswordHash, u.Role, u.Name, u.Email); err != nil {
			return err
		}
	}
	return nil
}
