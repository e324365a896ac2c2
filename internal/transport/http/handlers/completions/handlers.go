package completionshandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/auth"
	"okr/internal/domain/completion"
	"okr/internal/domain/employee"
	"okr/internal/domain/oplog"
	"okr/internal/platform/requestctx"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type Handler struct {
	Completions *completion.Service
	Employees   *employee.Service
	Log         *oplog.Service
}

func NewHandler(completions *completion.Service, employees *employee.Service, logSvc *oplog.Service) *Handler {
	return &Handler{Completions: completions, Employees: employees, Log: logSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	write := middleware.RequirePermission(auth.PermCompletionWrite)
	read := middleware.RequirePermission(auth.PermCompletionRead)
	grade := middleware.RequirePermission(auth.PermCompletionGrade)
	admin := middleware.RequirePermission(auth.PermEmployeeAdmin)

	r.With(write).Post("/completions", h.HandleCreate)
	r.With(write).Put("/completions/{completionID}", h.HandleUpdate)
	r.With(write).Delete("/completions/{completionID}", h.HandleDelete)
	r.With(write).Post("/completions/{completionID}/submit", h.HandleSubmit)
	r.With(grade).Post("/completions/{completionID}/score", h.HandleScore)
	r.With(admin).Post("/completions/{completionID}/archive", h.HandleArchive)
	r.With(admin).Post("/completions/reminders", h.HandleRemind)
	r.With(write).Post("/completions/{completionID}/unlock-request", h.HandleUnlockRequest)
	r.With(read).Get("/completions/my/list", h.HandleMine)
	r.With(grade).Get("/completions/pending/scores", h.HandlePendingScores)
	r.With(read).Get("/completions/{completionID}", h.HandleGet)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload completion.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if shared.Validate(w, payload, reqID) {
		return
	}

	caller, err := h.caller(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	c, err := h.Completions.Create(r.Context(), caller, payload)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), caller.UserID, caller.Name,
		"create", "completion", c.CompletionID, nil, c,
		shared.ClientIP(r), r.UserAgent())

	api.Created(w, c, reqID)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	completionID := chi.URLParam(r, "completionID")

	var payload completion.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if shared.Validate(w, payload, reqID) {
		return
	}

	c, err := h.Completions.Update(r.Context(), user.UserID, completionID, payload)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), user.UserID, user.Name,
		"update", "completion", c.CompletionID, nil, c,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, c, reqID)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	completionID := chi.URLParam(r, "completionID")

	if err := h.Completions.Delete(r.Context(), user.UserID, completionID); err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), user.UserID, user.Name,
		"delete", "completion", completionID, nil, nil,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	completionID := chi.URLParam(r, "completionID")

	c, err := h.Completions.Submit(r.Context(), user.UserID, completionID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), user.UserID, user.Name,
		"submit", "completion", c.CompletionID, nil, c,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, c, reqID)
}

func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	completionID := chi.URLParam(r, "completionID")

	var payload completion.ScoreInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if shared.Validate(w, payload, reqID) {
		return
	}

	caller, err := h.caller(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	c, err := h.Completions.Score(r.Context(), caller, completionID, payload)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), caller.UserID, caller.Name,
		"score", "completion", c.CompletionID, nil, c,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, c, reqID)
}

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	completionID := chi.URLParam(r, "completionID")

	c, err := h.Completions.Archive(r.Context(), completionID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), user.UserID, user.Name,
		"archive", "completion", c.CompletionID, nil, c,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, c, reqID)
}

// HandleRemind sweeps approved objectives without a self-assessment and
// nudges their owners. Admin action, typically triggered near the end
// of a review period.
func (h *Handler) HandleRemind(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	sent, err := h.Completions.RemindPending(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), user.UserID, user.Name,
		"remind", "completion", "", nil, map[string]int{"reminded": sent},
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, map[string]int{"reminded": sent}, reqID)
}

type unlockRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

func (h *Handler) HandleUnlockRequest(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	completionID := chi.URLParam(r, "completionID")

	var payload unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	caller, err := h.caller(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	if err := h.Completions.RequestUnlock(r.Context(), caller, completionID, payload.Reason); err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), caller.UserID, caller.Name,
		"unlock-request", "completion", completionID, nil, payload,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, map[string]string{"status": "requested"}, reqID)
}

func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	completions, err := h.Completions.Mine(r.Context(), user.UserID, r.URL.Query().Get("status"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, completions, reqID)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	completionID := chi.URLParam(r, "completionID")

	caller, err := h.caller(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	c, err := h.Completions.Get(r.Context(), caller, completionID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, c, reqID)
}

func (h *Handler) HandlePendingScores(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	pending, err := h.Completions.PendingScores(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, pending, reqID)
}

func (h *Handler) caller(r *http.Request) (employee.Employee, error) {
	user, _ := middleware.GetUser(r.Context())
	return h.Employees.ByUserID(r.Context(), user.UserID)
}
