package payroll

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

type stubRenderer struct {
	calls atomic.Int32
	fail  string
}

func (r *stubRenderer) Render(employee Employee, calc Calculation, company CompanyProfile, ref time.Time) (Document, error) {
	r.calls.Add(1)
	if employee.ID == r.fail {
		return Document{}, errors.New("render failed")
	}
	name := "recibo_" + strings.ReplaceAll(employee.Name, " ", "_") + ".pdf"
	return Document{
		EmployeeID:     employee.ID,
		FileName:       name,
		ReferenceMonth: ref.Format("2006-01"),
		ContentType:    ContentTypePDF,
		Content:        []byte(employee.ID + "|" + company.Name),
	}, nil
}

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	return value, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, content []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[string][]byte{}
	}
	c.items[key] = content
	return nil
}

func fixtureStore() *MemoryStore {
	company := &CompanyProfile{ID: "c1", Name: "TALO E CHURRASCARIA COSTA", NIF: "5000000000"}
	employees := []Employee{
		{ID: "1", Name: "João Silva", Position: "Cozinheiro", BaseSalary: 450000, TransportAllowance: 25000, FoodAllowance: 20000, OvertimeHours: 8, Status: StatusActive},
		{ID: "2", Name: "Maria Santos", Position: "Empregada de Mesa", BaseSalary: 320000, Absences: 1, Status: StatusActive},
		{ID: "3", Name: "Pedro Costa", Position: "Gerente", BaseSalary: 600000, Status: StatusInactive},
		{ID: "4", Name: "Ângela Lopes", Position: "Caixa", BaseSalary: 280000},
	}
	advances := []Advance{
		{ID: "a1", EmployeeID: "1", Amount: 50000},
		{ID: "a2", EmployeeID: "4", Amount: 30000},
	}
	return NewMemoryStore(company, employees, advances)
}

func ids(rows []SummaryRow) string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Employee.ID)
	}
	return strings.Join(out, ",")
}

func TestServiceCalculate(t *testing.T) {
	svc := NewService(fixtureStore(), NewCalculator(PolicyAllow), &stubRenderer{})

	employee, calc, err := svc.Calculate(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if employee.Name != "João Silva" {
		t.Fatalf("unexpected employee %+v", employee)
	}
	if calc.NetPay != 467500 {
		t.Fatalf("expected net 467500, got %v", calc.NetPay)
	}

	_, _, err = svc.Calculate(context.Background(), "missing")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestServiceSummary(t *testing.T) {
	svc := NewService(fixtureStore(), NewCalculator(PolicyAllow), &stubRenderer{})
	ctx := context.Background()

	tests := []struct {
		name   string
		filter SummaryFilter
		want   string
	}{
		{name: "default sorts by name", filter: SummaryFilter{}, want: "4,1,2"},
		{name: "accent insensitive search", filter: SummaryFilter{Search: "angela"}, want: "4"},
		{name: "search matches position", filter: SummaryFilter{Search: "COZINHEIRO"}, want: "1"},
		{name: "sort by net pay descending", filter: SummaryFilter{SortBy: SortByNetPay, Order: OrderDesc}, want: "1,2,4"},
		{name: "sort by position", filter: SummaryFilter{SortBy: SortByPosition}, want: "4,1,2"},
		{name: "no match", filter: SummaryFilter{Search: "xyz"}, want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			summary, err := svc.Summary(ctx, tc.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ids(summary.Rows); got != tc.want {
				t.Fatalf("expected rows %q, got %q", tc.want, got)
			}
			if summary.EmployeeCount != len(summary.Rows) {
				t.Fatalf("expected count %d, got %d", len(summary.Rows), summary.EmployeeCount)
			}
		})
	}

	summary, err := svc.Summary(ctx, SummaryFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var net float64
	for _, row := range summary.Rows {
		net += row.Calculation.NetPay
	}
	if !almostEqual(summary.TotalPayroll, net) {
		t.Fatalf("expected total payroll %v, got %v", net, summary.TotalPayroll)
	}
	if summary.TotalAdvances != 80000 {
		t.Fatalf("expected total advances 80000, got %v", summary.TotalAdvances)
	}
}

func TestServiceGeneratePayslipUsesCache(t *testing.T) {
	renderer := &stubRenderer{}
	cache := &mapCache{}
	var hits atomic.Int32
	svc := NewService(fixtureStore(), NewCalculator(PolicyAllow), renderer, WithCache(cache))
	svc.OnRender = func(err error, cached bool) {
		if cached {
			hits.Add(1)
		}
	}
	ref := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	first, err := svc.GeneratePayslip(context.Background(), "1", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GeneratePayslip(context.Background(), "1", ref.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer.calls.Load() != 1 {
		t.Fatalf("expected one render, got %d", renderer.calls.Load())
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one cache hit, got %d", hits.Load())
	}
	if !bytes.Equal(first.Content, second.Content) || first.FileName != second.FileName {
		t.Fatalf("cached document differs: %+v vs %+v", first, second)
	}

	if _, err := svc.GeneratePayslip(context.Background(), "1", ref.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer.calls.Load() != 2 {
		t.Fatalf("expected a new render for another month, got %d", renderer.calls.Load())
	}
}

func TestServiceGeneratePayslipDefaultsReference(t *testing.T) {
	svc := NewService(fixtureStore(), NewCalculator(PolicyAllow), &stubRenderer{})
	svc.Now = func() time.Time { return time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC) }

	doc, err := svc.GeneratePayslip(context.Background(), "2", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ReferenceMonth != "2026-03" {
		t.Fatalf("expected reference month 2026-03, got %q", doc.ReferenceMonth)
	}
}

func TestServiceGenerateAll(t *testing.T) {
	store := fixtureStore()
	store.employees = append(store.employees, Employee{ID: "5", Name: "João Silva", Position: "Ajudante", BaseSalary: 200000})
	svc := NewService(store, NewCalculator(PolicyAllow), &stubRenderer{}, WithWorkers(2))

	docs, err := svc.GenerateAll(context.Background(), SummaryFilter{}, time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, 0, len(docs))
	for _, doc := range docs {
		got = append(got, doc.EmployeeID+":"+doc.FileName)
	}
	want := "4:recibo_Ângela_Lopes.pdf,1:recibo_João_Silva.pdf,5:recibo_João_Silva_2.pdf,2:recibo_Maria_Santos.pdf"
	if strings.Join(got, ",") != want {
		t.Fatalf("expected %q, got %q", want, strings.Join(got, ","))
	}
}

func TestServiceGenerateAllStopsOnRenderError(t *testing.T) {
	svc := NewService(fixtureStore(), NewCalculator(PolicyAllow), &stubRenderer{fail: "2"})

	_, err := svc.GenerateAll(context.Background(), SummaryFilter{}, time.Now())
	if err == nil || !strings.Contains(err.Error(), "employee 2") {
		t.Fatalf("expected render error for employee 2, got %v", err)
	}
}

func TestUniqueNames(t *testing.T) {
	docs := []Document{
		{FileName: "a.pdf"},
		{FileName: "a.pdf"},
		{FileName: "a_2.pdf"},
		{FileName: "b.pdf"},
		{FileName: "a.pdf"},
	}
	UniqueNames(docs)

	want := []string{"a.pdf", "a_2.pdf", "a_2_2.pdf", "b.pdf", "a_3.pdf"}
	for i, doc := range docs {
		if doc.FileName != want[i] {
			t.Fatalf("doc %d: expected %q, got %q", i, want[i], doc.FileName)
		}
	}
}

func TestExportSummary(t *testing.T) {
	svc := NewService(fixtureStore(), NewCalculator(PolicyAllow), &stubRenderer{})

	buf, name, err := svc.ExportSummary(context.Background(), SummaryFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "folha_pagamento.xlsx" {
		t.Fatalf("unexpected file name %q", name)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header, 3 employees and totals, got %d rows", len(rows))
	}
	if rows[0][1] != "Funcionário" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Ângela Lopes" || rows[4][1] != "Total" {
		t.Fatalf("unexpected rows %v", rows)
	}
	net, err := f.GetCellValue(summarySheet, "K3", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("read net pay: %v", err)
	}
	if net != "467500" {
		t.Fatalf("expected raw net 467500, got %q", net)
	}
}
