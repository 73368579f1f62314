package payrollhandler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folha/internal/domain/auth"
	"folha/internal/domain/payroll"
	"folha/internal/domain/payslip"
	"folha/internal/platform/jobs"
	"folha/internal/transport/http/middleware"
)

const testSecret = "handler-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newRouter(t *testing.T) (http.Handler, *jobs.Service) {
	t.Helper()
	store := payroll.NewMemoryStore(
		&payroll.CompanyProfile{ID: "1", Name: "TALO E CHURRASCARIA COSTA", NIF: "5417123456"},
		[]payroll.Employee{
			{ID: "1", Name: "João Carlos Rodrigues", Position: "Desenvolvedor Senior", BaseSalary: 450000, TransportAllowance: 25000, FoodAllowance: 20000, OvertimeHours: 8, Status: payroll.StatusActive},
			{ID: "2", Name: "Maria Alejandra Gomes", Position: "Analista de Dados", BaseSalary: 320000, Absences: 1, Status: payroll.StatusActive},
			{ID: "3", Name: "Pedro Antigo", BaseSalary: 100000, Status: payroll.StatusInactive},
			{ID: "4", Name: "Registo Estragado", BaseSalary: -5, Status: payroll.StatusActive},
		},
		[]payroll.Advance{{ID: "a1", EmployeeID: "1", Amount: 50000}},
	)
	svc := payroll.NewService(store, payroll.NewCalculator(payroll.PolicyAllow), payslip.NewRenderer())
	svc.Now = func() time.Time { return time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC) }

	jobService := jobs.New(nil, nil)
	archive := payslip.NewArchive(t.TempDir(), nil)
	h := NewHandler(svc, jobService, jobs.PayslipArchive(svc, archive, svc.Now), nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Auth(testSecret))
	r.Route("/api/v1", h.RegisterRoutes)
	return r, jobService
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: "u-" + role, Username: role, Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func do(t *testing.T, h http.Handler, method, path, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestSummaryEndpoint(t *testing.T) {
	// Employee 4 has a negative salary, which the allow policy accepts.
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/payroll?search=maria", auth.RoleViewer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary payroll.Summary
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &summary))
	require.Len(t, summary.Rows, 1)
	assert.Equal(t, "2", summary.Rows[0].Employee.ID)
	assert.Equal(t, 1, summary.EmployeeCount)
	assert.InDelta(t, 320000-320000.0/30, summary.TotalPayroll, 1e-6)
}

func TestSummaryRejectsUnknownSort(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/payroll?sortBy=salary", auth.RoleViewer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode(t, rec).Error.Code)
}

func TestCalculationEndpoint(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/payroll/1", auth.RoleViewer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body calculationResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, 467500.0, body.Calculation.NetPay)
	assert.Equal(t, 517500.0, body.Calculation.GrossPay)

	rec = do(t, router, http.MethodGet, "/api/v1/payroll/missing", auth.RoleViewer)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "employee_not_found", decode(t, rec).Error.Code)
}

func TestAuthorization(t *testing.T) {
	router, _ := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodGet, "/api/v1/payroll", "").Code)
	assert.Equal(t, http.StatusForbidden, do(t, router, http.MethodGet, "/api/v1/payroll/payslips.zip", auth.RoleViewer).Code)
	assert.Equal(t, http.StatusForbidden, do(t, router, http.MethodGet, "/api/v1/jobs", auth.RoleHR).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/v1/jobs", auth.RoleAdmin).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/v1/company", auth.RoleViewer).Code)
}

func TestPayslipDownload(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/payroll/1/payslip?month=2026-03", auth.RoleViewer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, payroll.ContentTypePDF, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "recibo_pagamento_Jo")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "mar")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = do(t, router, http.MethodGet, "/api/v1/payroll/1/payslip?month=03-2026", auth.RoleViewer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchZip(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/payroll/payslips.zip?month=2026-10", auth.RoleHR)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"recibo_pagamento_João_Carlos_Rodrigues_outubro_de_2026.pdf",
		"recibo_pagamento_Maria_Alejandra_Gomes_outubro_de_2026.pdf",
		"recibo_pagamento_Registo_Estragado_outubro_de_2026.pdf",
	}, names)
}

func TestArchiveEnqueuesJob(t *testing.T) {
	router, jobService := newRouter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jobService.Start(ctx)

	rec := do(t, router, http.MethodPost, "/api/v1/payroll/payslips/archive", auth.RoleHR)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var run jobs.Run
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &run))
	assert.Equal(t, jobs.JobPayslipArchive, run.Type)

	require.Eventually(t, func() bool {
		runs := jobService.Runs()
		return len(runs) == 1 && runs[0].Status == jobs.StatusCompleted
	}, 5*time.Second, 20*time.Millisecond)
}

func TestExportEndpoint(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/payroll/export.xlsx?sortBy=netPay&order=desc", auth.RoleViewer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, payroll.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestListings(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/employees", auth.RoleViewer)
	require.Equal(t, http.StatusOK, rec.Code)
	var employees []payroll.Employee
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &employees))
	assert.Len(t, employees, 4)

	rec = do(t, router, http.MethodGet, "/api/v1/advances?employeeId=2", auth.RoleViewer)
	require.Equal(t, http.StatusOK, rec.Code)
	var advances []payroll.Advance
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &advances))
	assert.Empty(t, advances)
}
