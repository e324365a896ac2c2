package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"okr/internal/domain/auth"
	"okr/internal/domain/completion"
	"okr/internal/domain/employee"
	"okr/internal/domain/notify"
	"okr/internal/domain/objective"
	"okr/internal/domain/oplog"
	"okr/internal/domain/reporting"
	"okr/internal/platform/chat"
	"okr/internal/platform/config"
	"okr/internal/platform/oauth"
	"okr/internal/platform/openapi"
	"okr/internal/tablestore"
	adminhandler "okr/internal/transport/http/handlers/admin"
	authhandler "okr/internal/transport/http/handlers/auth"
	completionshandler "okr/internal/transport/http/handlers/completions"
	objectiveshandler "okr/internal/transport/http/handlers/objectives"
	usershandler "okr/internal/transport/http/handlers/users"
	"okr/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	Router http.Handler
}

// Deps lets tests substitute the external surfaces. Nil fields fall
// back to the real platform clients built from config.
type Deps struct {
	Store     tablestore.API
	Exchanger oauth.Exchanger
	Sender    notify.Sender
}

func New(cfg config.Config, deps Deps) *App {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	apiClient := openapi.New(cfg.PlatformBaseURL, cfg.AppID, cfg.AppSecret, cfg.HTTPTimeout)
	oauthClient := oauth.New(apiClient, cfg.OAuthRedirectURL, cfg.OAuthScope)

	store := deps.Store
	if store == nil {
		store = tablestore.New(apiClient, cfg.StoreAppToken, cfg.StorePageSize)
	}
	exchanger := deps.Exchanger
	if exchanger == nil {
		exchanger = oauthClient
	}
	sender := deps.Sender
	if sender == nil {
		sender = chat.New(apiClient)
	}

	employees := employee.NewService(store, cfg.TableEmployees)
	notifier := notify.NewService(sender, cfg.FrontendURL, logger)
	objectives := objective.NewService(store, cfg.TableObjectives, employees, notifier)
	completions := completion.NewService(store, cfg.TableCompletions, employees, objectives, notifier)
	authSvc := auth.NewService(exchanger, employees, cfg.JWTSecret, cfg.TokenTTL)
	logSvc := oplog.NewService(store, cfg.TableOperationLogs, logger)
	reports := reporting.NewService(employees, objectives, completions)

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "no-referrer",
		IsDevelopment:      cfg.Environment != "production",
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer)
	router.Use(secureMiddleware.Handler)
	if cfg.RateLimitPerMinute > 0 {
		router.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc, oauthClient, logSvc).RegisterRoutes(r)
		usershandler.NewHandler(employees, objectives, completions, logSvc).RegisterRoutes(r)
		objectiveshandler.NewHandler(objectives, employees, logSvc).RegisterRoutes(r)
		completionshandler.NewHandler(completions, employees, logSvc).RegisterRoutes(r)
		adminhandler.NewHandler(reports, logSvc).RegisterRoutes(r)
	})

	return &App{Config: cfg, Router: router}
}

// Run builds the app from the environment and serves until the listener
// fails.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app := New(cfg, Deps{})
	slog.Info("server listening", slog.String("addr", cfg.Addr))
	return http.ListenAndServe(cfg.Addr, app.Router)
}
