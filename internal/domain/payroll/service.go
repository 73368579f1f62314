package payroll

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	store      Store
	calculator *Calculator
	renderer   DocumentRenderer
	cache      DocumentCache
	logger     *zap.Logger
	workers    int

	// Now supplies the reference date when callers pass a zero time.
	Now func() time.Time
	// OnRender observes every payslip render attempt.
	OnRender func(err error, cached bool)
}

type ServiceOption func(*Service)

func WithCache(cache DocumentCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(store Store, calculator *Calculator, renderer DocumentRenderer, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		calculator: calculator,
		renderer:   renderer,
		logger:     zap.NewNop(),
		workers:    4,
		Now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() Store {
	return s.store
}

func (s *Service) Calculate(ctx context.Context, employeeID string) (Employee, Calculation, error) {
	employee, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Employee{}, Calculation{}, err
	}
	advances, err := s.store.ListAdvances(ctx)
	if err != nil {
		return Employee{}, Calculation{}, fmt.Errorf("list advances: %w", err)
	}
	calc, err := s.calculator.Calculate(employee, advances)
	if err != nil {
		return Employee{}, Calculation{}, err
	}
	return employee, calc, nil
}

// Summary computes pay for every active employee matching the filter.
func (s *Service) Summary(ctx context.Context, filter SummaryFilter) (Summary, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list employees: %w", err)
	}
	advances, err := s.store.ListAdvances(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list advances: %w", err)
	}

	query := normalizeSearch(filter.Search)
	rows := make([]SummaryRow, 0, len(employees))
	for _, employee := range employees {
		if !employee.Active() || !matchesSearch(employee, query) {
			continue
		}
		calc, err := s.calculator.Calculate(employee, advances)
		if err != nil {
			return Summary{}, fmt.Errorf("employee %s: %w", employee.ID, err)
		}
		rows = append(rows, SummaryRow{Employee: employee, Calculation: calc})
	}
	sortRows(rows, filter.SortBy, filter.Order)

	summary := Summary{Rows: rows, EmployeeCount: len(rows)}
	for _, row := range rows {
		summary.TotalPayroll += row.Calculation.NetPay
		summary.TotalAdvances += row.Calculation.TotalAdvances
	}
	return summary, nil
}

func (s *Service) GeneratePayslip(ctx context.Context, employeeID string, ref time.Time) (Document, error) {
	employee, calc, err := s.Calculate(ctx, employeeID)
	if err != nil {
		return Document{}, err
	}
	company, err := s.store.GetCompanyProfile(ctx)
	if err != nil {
		return Document{}, err
	}
	return s.render(ctx, employee, calc, company, s.reference(ref))
}

// GenerateAll renders payslips for the active employees selected by filter.
// Renders run concurrently; the result keeps summary order and file names
// are unique within the batch.
func (s *Service) GenerateAll(ctx context.Context, filter SummaryFilter, ref time.Time) ([]Document, error) {
	summary, err := s.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}
	company, err := s.store.GetCompanyProfile(ctx)
	if err != nil {
		return nil, err
	}
	ref = s.reference(ref)

	docs := make([]Document, len(summary.Rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range summary.Rows {
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := s.render(gctx, row.Employee, row.Calculation, company, ref)
			if err != nil {
				return fmt.Errorf("employee %s: %w", row.Employee.ID, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	UniqueNames(docs)
	return docs, nil
}

func (s *Service) reference(ref time.Time) time.Time {
	if ref.IsZero() {
		return s.Now()
	}
	return ref
}

func (s *Service) render(ctx context.Context, employee Employee, calc Calculation, company CompanyProfile, ref time.Time) (Document, error) {
	key := ""
	if s.cache != nil {
		key = cacheKey(employee, calc, company, ref)
		if doc, ok := s.cached(ctx, key, employee.ID); ok {
			s.observe(nil, true)
			return doc, nil
		}
	}

	doc, err := s.renderer.Render(employee, calc, company, ref)
	s.observe(err, false)
	if err != nil {
		return Document{}, err
	}
	if s.cache != nil {
		s.remember(ctx, key, doc)
	}
	s.logger.Debug("payslip rendered",
		zap.String("employeeId", employee.ID),
		zap.String("referenceMonth", doc.ReferenceMonth),
		zap.Int("bytes", len(doc.Content)),
	)
	return doc, nil
}

func (s *Service) cached(ctx context.Context, key, employeeID string) (Document, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("payslip cache read failed", zap.String("employeeId", employeeID), zap.Error(err))
		return Document{}, false
	}
	if !ok {
		return Document{}, false
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.Warn("payslip cache entry unreadable", zap.String("employeeId", employeeID), zap.Error(err))
		return Document{}, false
	}
	return doc, true
}

func (s *Service) remember(ctx context.Context, key string, doc Document) {
	raw, err := json.Marshal(doc)
	if err == nil {
		err = s.cache.Set(ctx, key, raw)
	}
	if err != nil {
		s.logger.Warn("payslip cache write failed", zap.String("employeeId", doc.EmployeeID), zap.Error(err))
	}
}

func (s *Service) observe(err error, cached bool) {
	if s.OnRender != nil {
		s.OnRender(err, cached)
	}
}

func cacheKey(employee Employee, calc Calculation, company CompanyProfile, ref time.Time) string {
	payload, _ := json.Marshal(struct {
		Employee Employee
		Calc     Calculation
		Company  CompanyProfile
		Month    string
	}{employee, calc, company, ref.Format("2006-01")})
	sum := sha256.Sum256(payload)
	return "payslip:" + hex.EncodeToString(sum[:])
}
