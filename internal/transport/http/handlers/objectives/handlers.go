package objectiveshandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/auth"
	"okr/internal/domain/employee"
	"okr/internal/domain/objective"
	"okr/internal/domain/oplog"
	"okr/internal/platform/requestctx"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type Handler struct {
	Objectives *objective.Service
	Employees  *employee.Service
	Log        *oplog.Service
}

func NewHandler(objectives *objective.Service, employees *employee.Service, logSvc *oplog.Service) *Handler {
	return &Handler{Objectives: objectives, Employees: employees, Log: logSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	write := middleware.RequirePermission(auth.PermObjectiveWrite)
	read := middleware.RequirePermission(auth.PermObjectiveRead)
	grade := middleware.RequirePermission(auth.PermObjectiveGrade)

	r.With(write).Post("/objectives", h.HandleCreate)
	r.With(write).Put("/objectives/{objectiveID}", h.HandleUpdate)
	r.With(write).Delete("/objectives/{objectiveID}", h.HandleDelete)
	r.With(write).Post("/objectives/{objectiveID}/submit", h.HandleSubmit)
	r.With(grade).Post("/objectives/{objectiveID}/approve", h.HandleApprove)
	r.With(read).Get("/objectives/my/list", h.HandleMine)
	r.With(grade).Get("/objectives/subordinates/list", h.HandleSubordinates)
	r.With(grade).Get("/objectives/pending/approvals", h.HandlePendingApprovals)
	r.With(read).Get("/objectives/{objectiveID}", h.HandleGet)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload objective.CreateInput
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

	obj, err := h.Objectives.Create(r.Context(), caller, payload)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), caller.UserID, caller.Name,
		"create", "objective", obj.ObjectiveID, nil, obj,
		shared.ClientIP(r), r.UserAgent())

	api.Created(w, obj, reqID)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	objectiveID := chi.URLParam(r, "objectiveID")

	var payload objective.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if shared.Validate(w, payload, reqID) {
		return
	}

	obj, err := h.Objectives.Update(r.Context(), user.UserID, objectiveID, payload)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), user.UserID, user.Name,
		"update", "objective", obj.ObjectiveID, nil, obj,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, obj, reqID)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	objectiveID := chi.URLParam(r, "objectiveID")

	if err := h.Objectives.Delete(r.Context(), user.UserID, objectiveID); err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), user.UserID, user.Name,
		"delete", "objective", objectiveID, nil, nil,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	objectiveID := chi.URLParam(r, "objectiveID")

	obj, err := h.Objectives.Submit(r.Context(), user.UserID, objectiveID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), user.UserID, user.Name,
		"submit", "objective", obj.ObjectiveID, nil, obj,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, obj, reqID)
}

type approveRequest struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment" validate:"max=2000"`
}

// HandleApprove decides a pending objective: approved true approves,
// false rejects with the comment.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	objectiveID := chi.URLParam(r, "objectiveID")

	var payload approveRequest
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

	var obj objective.Objective
	if payload.Approved {
		obj, err = h.Objectives.Approve(r.Context(), caller, objectiveID, payload.Comment)
	} else {
		obj, err = h.Objectives.Reject(r.Context(), caller, objectiveID, payload.Comment)
	}
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), caller.UserID, caller.Name,
		obj.Status, "objective", obj.ObjectiveID, nil, obj,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, obj, reqID)
}

func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	objectives, err := h.Objectives.Mine(r.Context(), user.UserID, r.URL.Query().Get("status"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, objectives, reqID)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	objectiveID := chi.URLParam(r, "objectiveID")

	caller, err := h.caller(r)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	obj, err := h.Objectives.Get(r.Context(), caller, objectiveID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, obj, reqID)
}

func (h *Handler) HandleSubordinates(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	objectives, err := h.Objectives.SubordinateObjectives(r.Context(), user.UserID, r.URL.Query().Get("status"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, objectives, reqID)
}

func (h *Handler) HandlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	pending, err := h.Objectives.PendingApprovals(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, pending, reqID)
}

// caller resolves the full employee record behind the session; guards
// that compare names and roles need more than the token claims.
func (h *Handler) caller(r *http.Request) (employee.Employee, error) {
	user, _ := middleware.GetUser(r.Context())
	return h.Employees.ByUserID(r.Context(), user.UserID)
}
