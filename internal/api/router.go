package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/orgodyssey/odyssey/docs"
	"github.com/orgodyssey/odyssey/internal/api/handler"
	"github.com/orgodyssey/odyssey/internal/api/middleware"
	"github.com/orgodyssey/odyssey/internal/core/ports"
	"github.com/orgodyssey/odyssey/internal/infrastructure/http/handlers"
)

// Deps carries everything the router needs. Services are built by the caller
// so the same router serves either storage backend.
type Deps struct {
	Auth      ports.AuthService
	Employers ports.EmployerService
	Admin     ports.AdminService

	// Readiness probes keyed by dependency name.
	Readiness map[string]handlers.Check

	// SecureCookie marks the session cookie Secure.
	SecureCookie bool

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "odyssey",
		Subsystem:  "http",
		Registerer: deps.Registerer,
	}))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.SecureCookie)
	employerHandler := handler.NewEmployerHandler(deps.Employers)
	visualizationHandler := handler.NewVisualizationHandler(deps.Employers)
	adminHandler := handler.NewAdminHandler(deps.Admin)

	// --- Public routes ---
	e.POST("/", authHandler.Login)
	e.POST("/login", authHandler.Login)
	e.POST("/register", authHandler.Register)
	e.GET("/confirm/:token", authHandler.Confirm)

	// --- Signed-in routes ---
	auth := middleware.Auth(deps.Auth, deps.Admin)
	e.GET("/logout", authHandler.Logout, auth)
	e.GET("/home", authHandler.Home, auth)
	e.GET("/employers", employerHandler.List, auth)
	e.GET("/visualization/:root_name", visualizationHandler.ByName, auth)
	e.POST("/visualization/:root_name", visualizationHandler.ByName, auth)
	e.POST("/visualization", visualizationHandler.Search, auth)

	// --- Admin routes ---
	requireAdmin := middleware.RequireAdmin()
	e.GET("/admin", adminHandler.Overview, auth, requireAdmin)
	e.POST("/add_admin", adminHandler.AddAdmin, auth, requireAdmin)
	e.POST("/add_employer", employerHandler.Create, auth, requireAdmin)
	e.POST("/edit_employer", employerHandler.Edit, auth, requireAdmin)
	e.POST("/delete_employer", employerHandler.Delete, auth, requireAdmin)
	e.POST("/add_relation", employerHandler.AddRelation, auth, requireAdmin)

	// --- Ops (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
