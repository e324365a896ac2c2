package usershandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"okr/internal/domain/auth"
	"okr/internal/domain/completion"
	"okr/internal/domain/employee"
	"okr/internal/domain/objective"
	"okr/internal/domain/oplog"
	"okr/internal/platform/requestctx"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type Handler struct {
	Employees   *employee.Service
	Objectives  *objective.Service
	Completions *completion.Service
	Log         *oplog.Service
}

func NewHandler(employees *employee.Service, objectives *objective.Service, completions *completion.Service, logSvc *oplog.Service) *Handler {
	return &Handler{Employees: employees, Objectives: objectives, Completions: completions, Log: logSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEmployeeRead)
	admin := middleware.RequirePermission(auth.PermEmployeeAdmin)

	r.With(read).Get("/users/me", h.HandleMe)
	r.With(read).Get("/users/me/subordinates", h.HandleMySubordinates)
	r.With(read).Get("/users/department/{department}", h.HandleByDepartment)
	r.With(read).Get("/users/{userID}", h.HandleGet)
	r.With(read).Get("/users/{userID}/subordinates", h.HandleSubordinates)
	r.With(read).Get("/users/{userID}/history", h.HandleHistory)

	r.With(admin).Get("/users", h.HandleList)
	r.With(admin).Post("/users", h.HandleCreate)
	r.With(admin).Put("/users/{userID}", h.HandleUpdate)
	r.With(admin).Delete("/users/{userID}", h.HandleDelete)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Employees.ByUserID(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	emp, err := h.Employees.ByUserID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) HandleMySubordinates(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	subs, err := h.Employees.Subordinates(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, subs, reqID)
}

func (h *Handler) HandleSubordinates(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	subs, err := h.Employees.Subordinates(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, subs, reqID)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	all, err := h.Employees.List(r.Context())
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, all, reqID)
}

func (h *Handler) HandleByDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	members, err := h.Employees.ByDepartment(r.Context(), chi.URLParam(r, "department"))
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, members, reqID)
}

// HandleHistory returns a person's objectives and completions across
// periods. Visible to the person, their direct supervisor, and admins.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	if caller.UserID != userID && caller.Role != employee.RoleAdmin {
		ok, err := h.Employees.IsSupervisorOf(r.Context(), caller.UserID, userID)
		if err != nil {
			api.FailError(w, err, reqID)
			return
		}
		if !ok {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
			return
		}
	}

	objectives, err := h.Objectives.Mine(r.Context(), userID, "")
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	completions, err := h.Completions.Mine(r.Context(), userID, "")
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{
		"objectives":  objectives,
		"completions": completions,
	}, reqID)
}

type createUserRequest struct {
	UserID       string `json:"userId" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	SupervisorID string `json:"supervisorId"`
	Role         string `json:"role" validate:"omitempty,oneof=employee supervisor admin"`
	EntryDate    string `json:"entryDate"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if shared.Validate(w, payload, reqID) {
		return
	}
	if _, err := shared.ParseDate(payload.EntryDate); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "entryDate must be RFC3339 or YYYY-MM-DD", reqID)
		return
	}

	emp, err := h.Employees.Create(r.Context(), employee.Employee{
		UserID:       payload.UserID,
		Name:         payload.Name,
		Email:        payload.Email,
		Department:   payload.Department,
		Position:     payload.Position,
		SupervisorID: payload.SupervisorID,
		Role:         employee.ParseRole(payload.Role),
		EntryDate:    payload.EntryDate,
	})
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	caller, _ := middleware.GetUser(r.Context())
	h.Log.Record(r.Context(), caller.UserID, caller.Name,
		"create", "employee", emp.UserID, nil, emp,
		shared.ClientIP(r), r.UserAgent())

	api.Created(w, emp, reqID)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload employee.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	before, err := h.Employees.ByUserID(r.Context(), userID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	emp, err := h.Employees.Update(r.Context(), userID, payload)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	caller, _ := middleware.GetUser(r.Context())
	h.Log.Record(r.Context(), caller.UserID, caller.Name,
		"update", "employee", emp.UserID, before, emp,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, emp, reqID)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	userID := chi.URLParam(r, "userID")

	before, err := h.Employees.ByUserID(r.Context(), userID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	if err := h.Employees.Delete(r.Context(), userID); err != nil {
		api.FailError(w, err, reqID)
		return
	}

	caller, _ := middleware.GetUser(r.Context())
	h.Log.Record(r.Context(), caller.UserID, caller.Name,
		"delete", "employee", userID, before, nil,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}
