package server

import (
	"log/slog"
	"net/http"

	"ledgervault/internal/config"
	"ledgervault/internal/database"
	"ledgervault/internal/handlers"
	"ledgervault/internal/ledger"
	"ledgervault/internal/middleware"
	"ledgervault/internal/repositories"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Config   config.SandboxConfig
	Service  *ledger.Service
	Health   handlers.HealthChecker
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer
	Limiter  *middleware.RateLimiter
	Logger   *slog.Logger
}

// NewLedgerService wires the repositories over db into a ledger service.
func NewLedgerService(db *database.DB, cfg config.SandboxConfig, logger *slog.Logger) *ledger.Service {
	return ledger.NewService(ledger.Deps{
		Users:      repositories.NewUserRepository(db.DB),
		Accounts:   repositories.NewAccountRepository(db.DB),
		Transfers:  repositories.NewTransferRepository(db.DB),
		Revoked:    repositories.NewRevokedTokenRepository(db.DB),
		Tokens:     ledger.NewTokenService(cfg.JWT),
		BCryptCost: cfg.BCryptCost,
		Logger:     logger,
	})
}

// NewRouter wires the routes exposed by the sandbox API under /api, plus
// /health and /metrics.
func NewRouter(deps RouterDependencies) *echo.Echo {
	logger := deps.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.NewHTTPErrorHandler(logger, deps.Metrics)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}
	e.Use(middleware.PanicRecovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.BodyLimit("64K"))
	if len(deps.Config.AllowedOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     deps.Config.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, middleware.TraceIDHeader},
			AllowCredentials: true,
		}))
	}

	e.GET("/health", handlers.NewHealthCheckHandler(deps.Health).HealthCheck)
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	cookieName := deps.Config.JWT.CookieName
	requireSession := middleware.RequireSession(deps.Service, cookieName, logger)

	authHandler := handlers.NewAuthHandler(deps.Service, handlers.SessionCookie{
		Name:   cookieName,
		Secure: deps.Config.Environment == "production",
	}, logger)
	accountHandler := handlers.NewAccountHandler(deps.Service, logger)
	transactionHandler := handlers.NewTransactionHandler(deps.Service, logger)

	api := e.Group("/api")
	if deps.Limiter != nil {
		api.Use(deps.Limiter.Middleware())
	}

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)

	accounts := api.Group("/accounts", requireSession)
	accounts.GET("/", accountHandler.ListAccounts)
	accounts.POST("/", accountHandler.CreateAccount)
	accounts.DELETE("/:id", accountHandler.CloseAccount)
	accounts.GET("/balance/:id", accountHandler.GetBalance)
	accounts.GET("/resolve/:email", accountHandler.ResolveRecipient)

	transactions := api.Group("/transactions", requireSession)
	transactions.POST("/", transactionHandler.CreateTransfer)

	if deps.Config.Environment != "production" {
		devHandler := handlers.NewDevHandler(deps.Service, logger)
		dev := api.Group("/dev")
		dev.POST("/seed", devHandler.SeedDemoData)
		dev.POST("/accounts/:id/deposit", devHandler.Deposit, requireSession)
	}

	return e
}
