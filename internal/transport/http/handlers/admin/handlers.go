package adminhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/auth"
	"okr/internal/domain/oplog"
	"okr/internal/domain/reporting"
	"okr/internal/platform/requestctx"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type Handler struct {
	Reports *reporting.Service
	Log     *oplog.Service
}

func NewHandler(reports *reporting.Service, logSvc *oplog.Service) *Handler {
	return &Handler{Reports: reports, Log: logSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	report := middleware.RequirePermission(auth.PermReportRead)
	logs := middleware.RequirePermission(auth.PermLogRead)

	r.With(report).Get("/admin/statistics", h.HandleStatistics)
	r.With(report).Get("/admin/progress", h.HandleProgress)
	r.With(report).Get("/admin/employee-stats", h.HandleEmployeeStats)
	r.With(report).Get("/admin/department-stats", h.HandleDepartmentStats)
	r.With(report).Get("/admin/export", h.HandleExport)
	r.With(logs).Get("/admin/logs", h.HandleLogs)
}

func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	stats, err := h.Reports.Statistics(r.Context(), r.URL.Query().Get("periodId"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	progress, err := h.Reports.Progress(r.Context(), r.URL.Query().Get("periodId"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, progress, reqID)
}

func (h *Handler) HandleEmployeeStats(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	pg := shared.ParsePagination(r, 20, 200)

	stats, err := h.Reports.EmployeeStats(r.Context(), r.URL.Query().Get("periodId"), pg.Page, pg.PageSize)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) HandleDepartmentStats(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	department := r.URL.Query().Get("department")
	if department == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "department query parameter required", reqID)
		return
	}

	stats, err := h.Reports.DepartmentStats(r.Context(), department, r.URL.Query().Get("periodId"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, stats, reqID)
}

// HandleExport streams the per-employee report as CSV (default) or PDF.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	format := r.URL.Query().Get("format")
	if format != "" && format != reporting.FormatCSV && format != reporting.FormatPDF {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "format must be csv or pdf", reqID)
		return
	}

	result, err := h.Reports.Export(r.Context(), r.URL.Query().Get("periodId"), format)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	user, _ := middleware.GetUser(r.Context())
	h.Log.Record(r.Context(), user.UserID, user.Name,
		"export", "report", result.Filename, nil, nil, "", r.UserAgent())

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	entries, err := h.Log.List(r.Context(), oplog.Query{
		OperatorID:   r.URL.Query().Get("operatorId"),
		Operation:    r.URL.Query().Get("operation"),
		ResourceType: r.URL.Query().Get("resourceType"),
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, entries, reqID)
}
