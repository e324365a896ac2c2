package authhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"okr/internal/domain/auth"
	"okr/internal/domain/oplog"
	"okr/internal/platform/oauth"
	"okr/internal/platform/requestctx"
	"okr/internal/transport/http/api"
	"okr/internal/transport/http/middleware"
	"okr/internal/transport/http/shared"
)

type Handler struct {
	Auth  *auth.Service
	OAuth *oauth.Client
	Log   *oplog.Service
}

func NewHandler(authSvc *auth.Service, oauthClient *oauth.Client, logSvc *oplog.Service) *Handler {
	return &Handler{Auth: authSvc, OAuth: oauthClient, Log: logSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/login", h.HandleLogin)
	r.Get("/auth/callback", h.HandleCallback)
	r.Get("/auth/profile", h.HandleProfile)
	r.Get("/auth/refresh", h.HandleRefresh)
	r.Get("/auth/logout", h.HandleLogout)
}

// HandleLogin returns the platform authorize URL the frontend should
// redirect to.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	api.Success(w, map[string]string{
		"authorizeUrl": h.OAuth.AuthorizeURL(state),
		"state":        state,
	}, requestctx.GetRequestID(r.Context()))
}

// HandleCallback completes the OAuth dance and issues the session.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	code := r.URL.Query().Get("code")
	if code == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "code query parameter required", reqID)
		return
	}

	session, err := h.Auth.Login(r.Context(), code)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}

	h.Log.Record(r.Context(), session.User.UserID, session.User.Name,
		"login", "session", session.User.UserID, nil, nil,
		shared.ClientIP(r), r.UserAgent())

	api.Success(w, session, reqID)
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", reqID)
		return
	}

	profile, err := h.Auth.Profile(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, profile, reqID)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", reqID)
		return
	}

	session, err := h.Auth.Refresh(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, reqID)
		return
	}
	api.Success(w, session, reqID)
}

// HandleLogout is a client-side affair with stateless tokens; the
// endpoint exists so the frontend has something to call and the logout
// lands in the audit log.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	if user, ok := middleware.GetUser(r.Context()); ok {
		h.Log.Record(r.Context(), user.UserID, user.Name,
			"logout", "session", user.UserID, nil, nil,
			shared.ClientIP(r), r.UserAgent())
	}
	api.Success(w, map[string]string{"status": "logged out"}, reqID)
}
