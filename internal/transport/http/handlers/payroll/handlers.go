package payrollhandler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"folha/internal/domain/auth"
	"folha/internal/domain/payroll"
	"folha/internal/domain/payslip"
	"folha/internal/platform/jobs"
	"folha/internal/transport/http/api"
	"folha/internal/transport/http/middleware"
	"folha/internal/transport/http/shared"
)

const contentTypeZip = "application/zip"

type Handler struct {
	Service    *payroll.Service
	Jobs       *jobs.Service
	ArchiveJob jobs.RunFunc
	Logger     *zap.Logger
}

func NewHandler(service *payroll.Service, jobService *jobs.Service, archiveJob jobs.RunFunc, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: service, Jobs: jobService, ArchiveJob: archiveJob, Logger: logger}
}

type calculationResponse struct {
	Employee    payroll.Employee    `json:"employee"`
	Calculation payroll.Calculation `json:"calculation"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermPayrollRead)
	write := middleware.RequirePermission(auth.PermPayrollWrite)

	r.With(read).Get("/company", h.handleCompany)
	r.With(read).Get("/employees", h.handleListEmployees)
	r.With(read).Get("/advances", h.handleListAdvances)

	r.Route("/payroll", func(r chi.Router) {
		r.With(read).Get("/", h.handleSummary)
		r.With(read).Get("/export.xlsx", h.handleExport)
		r.With(write).Get("/payslips.zip", h.handleBatchZip)
		r.With(write).Post("/payslips/archive", h.handleArchive)
		r.With(read).Get("/{employeeID}", h.handleCalculation)
		r.With(read).Get("/{employeeID}/payslip", h.handlePayslip)
	})

	r.With(middleware.RequirePermission(auth.PermSystemAdmin)).Get("/jobs", h.handleListJobs)
}

func (h *Handler) handleCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.Service.Store().GetCompanyProfile(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, company, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.Store().ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if employees == nil {
		employees = []payroll.Employee{}
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAdvances(w http.ResponseWriter, r *http.Request) {
	advances, err := h.Service.Store().ListAdvances(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if employeeID := r.URL.Query().Get("employeeId"); employeeID != "" {
		filtered := advances[:0]
		for _, advance := range advances {
			if advance.EmployeeID == employeeID {
				filtered = append(filtered, advance)
			}
		}
		advances = filtered
	}
	if advances == nil {
		advances = []payroll.Advance{}
	}
	api.Success(w, advances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.summaryFilter(w, r)
	if !ok {
		return
	}
	summary, err := h.Service.Summary(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if summary.Rows == nil {
		summary.Rows = []payroll.SummaryRow{}
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.summaryFilter(w, r)
	if !ok {
		return
	}
	buf, name, err := h.Service.ExportSummary(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Attachment(w, payroll.ContentTypeXLSX, name, buf.Bytes())
}

func (h *Handler) handleCalculation(w http.ResponseWriter, r *http.Request) {
	employee, calc, err := h.Service.Calculate(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, calculationResponse{Employee: employee, Calculation: calc}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.referenceMonth(w, r)
	if !ok {
		return
	}
	doc, err := h.Service.GeneratePayslip(r.Context(), chi.URLParam(r, "employeeID"), ref)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Attachment(w, doc.ContentType, doc.FileName, doc.Content)
}

func (h *Handler) handleBatchZip(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.summaryFilter(w, r)
	if !ok {
		return
	}
	ref, ok := h.referenceMonth(w, r)
	if !ok {
		return
	}
	if ref.IsZero() {
		ref = h.Service.Now()
	}

	docs, err := h.Service.GenerateAll(r.Context(), filter, ref)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := payslip.WriteZip(&buf, docs, ref); err != nil {
		h.fail(w, r, err)
		return
	}
	h.Logger.Info("payslip batch generated",
		zap.Int("count", len(docs)),
		zap.String("referenceMonth", payslip.MonthKey(ref)),
		zap.String("requestId", middleware.GetRequestID(r.Context())),
	)
	api.Attachment(w, contentTypeZip, "recibos_"+payslip.MonthKey(ref)+".zip", buf.Bytes())
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.Jobs == nil || h.ArchiveJob == nil {
		api.Fail(w, http.StatusServiceUnavailable, "jobs_unavailable", "background jobs are not configured", requestID)
		return
	}
	run, err := h.Jobs.Enqueue(jobs.JobPayslipArchive, h.ArchiveJob)
	if errors.Is(err, jobs.ErrQueueFull) {
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", requestID)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Accepted(w, run, requestID)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	runs := []jobs.Run{}
	if h.Jobs != nil {
		runs = h.Jobs.Runs()
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) summaryFilter(w http.ResponseWriter, r *http.Request) (payroll.SummaryFilter, bool) {
	q := r.URL.Query()
	filter := payroll.SummaryFilter{
		Search: q.Get("search"),
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
	}
	v := shared.NewValidator()
	v.Enum("sortBy", filter.SortBy, []string{payroll.SortByName, payroll.SortByPosition, payroll.SortByNetPay})
	v.Enum("order", filter.Order, []string{payroll.OrderAsc, payroll.OrderDesc})
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payroll.SummaryFilter{}, false
	}
	return filter, true
}

func (h *Handler) referenceMonth(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	v := shared.NewValidator()
	ref := v.Month("month", r.URL.Query().Get("month"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return time.Time{}, false
	}
	return ref, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	var verr *payroll.ValidationError
	switch {
	case errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
	case errors.Is(err, payroll.ErrCompanyProfileNotFound):
		api.Fail(w, http.StatusNotFound, "company_not_found", "company profile not configured", requestID)
	case errors.As(err, &verr):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "invalid_record", err.Error(),
			map[string]string{"field": verr.Field, "reason": verr.Reason}, requestID)
	default:
		h.Logger.Error("payroll request failed", zap.Error(err), zap.String("path", r.URL.Path), zap.String("requestId", requestID))
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
