package payroll

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in process. Reads return copies.
type MemoryStore struct {
	mu        sync.RWMutex
	employees []Employee
	advances  []Advance
	company   *CompanyProfile
}

func NewMemoryStore(company *CompanyProfile, employees []Employee, advances []Advance) *MemoryStore {
	s := &MemoryStore{
		employees: slices.Clone(employees),
		advances:  slices.Clone(advances),
	}
	if company != nil {
		c := *company
		s.company = &c
	}
	return s
}

func (s *MemoryStore) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.employees), nil
}

func (s *MemoryStore) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, employee := range s.employees {
		if employee.ID == employeeID {
			return employee, nil
		}
	}
	return Employee{}, ErrEmployeeNotFound
}

func (s *MemoryStore) ListAdvances(ctx context.Context) ([]Advance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.advances), nil
}

func (s *MemoryStore) GetCompanyProfile(ctx context.Context) (CompanyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.company == nil {
		return CompanyProfile{}, ErrCompanyProfileNotFound
	}
	return *s.company, nil
}
