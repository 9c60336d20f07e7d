package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/digital-station/platform/internal/account"
	"github.com/digital-station/platform/internal/auth"
	"github.com/digital-station/platform/internal/escalation"
	firapi "github.com/digital-station/platform/internal/fir/api"
	firdomain "github.com/digital-station/platform/internal/fir/domain"
	firinfra "github.com/digital-station/platform/internal/fir/infrastructure"
	sharedauth "github.com/digital-station/platform/internal/shared/auth"
	"github.com/digital-station/platform/internal/shared/config"
	"github.com/digital-station/platform/internal/shared/database"
	"github.com/digital-station/platform/internal/shared/errors"
	"github.com/digital-station/platform/internal/shared/events"
	"github.com/digital-station/platform/internal/shared/logging"
	"github.com/digital-station/platform/internal/shared/metrics"
	secmiddleware "github.com/digital-station/platform/internal/shared/middleware"
	"github.com/digital-station/platform/internal/shared/ratelimit"
	"github.com/digital-station/platform/internal/shared/respond"
)

// maxBodyBytes bounds request bodies; FIR narratives are the largest payloads.
const maxBodyBytes = 1 << 20

// App holds all application dependencies
type App struct {
	Config    *config.Config
	DB        *database.DB
	Bus       *events.Bus
	Publisher events.Publisher
	Limiter   ratelimit.Limiter
}

func newRouter(app *App) (*chi.Mux, error) {
	cfg := app.Config

	tokens, err := sharedauth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, err
	}
	mediator := auth.NewMediator(tokens)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(metrics.Middleware)
	r.Use(secmiddleware.CORS(secmiddleware.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	r.Use(secmiddleware.BodyLimit(maxBodyBytes))

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())
	r.Get("/", infoHandler)

	if app.DB == nil {
		for _, prefix := range []string{"/citizen", "/fir", "/government", "/policeauth"} {
			r.Mount(prefix, http.HandlerFunc(databaseUnavailable))
		}
		return r, nil
	}

	// Accounts
	accounts := account.NewHandler(
		account.NewService(account.NewRepository(app.DB.Pool), tokens, cfg.Auth.BcryptCost),
		mediator,
		app.Limiter,
	)

	// FIR lifecycle
	firRepo := firinfra.NewPostgresRepository(app.DB.Pool)
	firs := firapi.NewHandler(firdomain.NewEngine(firRepo, app.Publisher), mediator)

	// Escalations
	escalations := escalation.NewHandler(
		escalation.NewEngine(escalation.NewRepository(app.DB.Pool), firRepo, app.Publisher),
		mediator,
	)

	r.Route("/citizen", func(r chi.Router) {
		accounts.CitizenRoutes(r)
		escalations.CitizenRoutes(r)
		firs.CitizenRoutes(r)
	})
	r.Mount("/fir", firs.Routes())
	r.Route("/government", func(r chi.Router) {
		accounts.GovernmentRoutes(r)
		firs.GovernmentRoutes(r)
		escalations.GovernmentRoutes(r)
	})
	r.Mount("/policeauth", accounts.PoliceRoutes())

	return r, nil
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"name":    "Digital Police Station",
		"version": "0.1.0",
		"status":  "ok",
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func databaseUnavailable(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, errors.Unavailable("database unavailable"))
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not ready"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(r.Context()); err != nil {
				checks["kurrentdb"] = "not ready: " + err.Error()
			} else {
				checks["kurrentdb"] = "ready"
			}
		} else {
			checks["kurrentdb"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(w, status, map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}
