package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/expense-reports/internal"
	"github.com/frahmantamala/expense-reports/internal/attachment"
	attachmentPostgres "github.com/frahmantamala/expense-reports/internal/attachment/postgres"
	"github.com/frahmantamala/expense-reports/internal/category"
	"github.com/frahmantamala/expense-reports/internal/core/events"
	"github.com/frahmantamala/expense-reports/internal/core/metrics"
	"github.com/frahmantamala/expense-reports/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-reports/internal/expense/postgres"
	"github.com/frahmantamala/expense-reports/internal/report"
	reportPostgres "github.com/frahmantamala/expense-reports/internal/report/postgres"
	"github.com/frahmantamala/expense-reports/internal/transport"
	"github.com/frahmantamala/expense-reports/internal/transport/middleware"
	"github.com/frahmantamala/expense-reports/internal/transport/rest"
	"github.com/frahmantamala/expense-reports/internal/transport/swagger"
	"github.com/frahmantamala/expense-reports/internal/user"
	userPostgres "github.com/frahmantamala/expense-reports/internal/user/postgres"
	"github.com/frahmantamala/expense-reports/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Bus      *events.EventBus
	Registry *prometheus.Registry
	Logger   *slog.Logger

	Users       *user.Service
	Reports     *report.Service
	ReportRepo  report.RepositoryAPI
	Expenses    *expense.Service
	Attachments *attachment.Service
	Storage     *attachment.LocalFileStorage
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	router, err := setupRoutes(deps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			return
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) (*chi.Mux, error) {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	handlers := rest.Handlers{
		Health:     rest.NewHealthHandler(deps.DB, healthComponent(cfg.Database)),
		Category:   category.NewHandler(base, category.NewService(lg)),
		User:       user.NewHandler(base, deps.Users),
		Report:     report.NewHandler(base, deps.Reports),
		Expense:    expense.NewHandler(base, deps.Expenses),
		Attachment: attachment.NewHandler(base, deps.Attachments, cfg.Storage.MaxUploadBytes),
	}

	if cfg.Server.OpenAPIPath != "" {
		doc, err := swagger.Load(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			return nil, err
		}
		handlers.OpenAPI = doc
	}

	if cfg.Observability.Metrics.Enabled {
		handlers.Metrics = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry})
		handlers.MetricsPath = cfg.Observability.Metrics.Path
		handlers.HTTPMetrics = middleware.NewHTTPMetrics(deps.Registry)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultUserID:  cfg.Auth.DefaultUserID,
	}, lg)
	return router, nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gormDB, err := initGorm(config.Database, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus := events.NewEventBus(lg)
	report.NewEventHandler(metrics.NewRecorder(registry), lg).Register(bus)

	storage := attachment.NewLocalFileStorage(config.Storage.BaseDir, lg)

	userService := user.NewService(userPostgres.NewUserRepository(gormDB), lg)

	reportRepo := reportPostgres.NewReportRepository(gormDB)
	reportService := report.NewService(
		reportRepo,
		reportPostgres.NewSummaryReader(db),
		userService,
		storage,
		bus,
		lg,
	)

	expenseRepo := expensePostgres.NewExpenseRepository(gormDB)
	expenseService := expense.NewService(
		expenseRepo,
		expensePostgres.NewReportStore(gormDB),
		expensePostgres.NewTransactor(gormDB),
		bus,
		lg,
	)

	attachmentService := attachment.NewService(
		attachmentPostgres.NewAttachmentRepository(gormDB),
		expenseRepo,
		storage,
		config.Storage.MaxUploadBytes,
		lg,
	)

	return &Dependencies{
		Config:      config,
		DB:          db,
		Gorm:        gormDB,
		Bus:         bus,
		Registry:    registry,
		Logger:      lg,
		Users:       userService,
		Reports:     reportService,
		ReportRepo:  reportRepo,
		Expenses:    expenseService,
		Attachments: attachmentService,
		Storage:     storage,
	}, nil
}

func (d *Dependencies) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Bus.Drain(ctx); err != nil {
		d.Logger.Warn("Event handlers still running at shutdown", "error", err)
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func healthComponent(cfg internal.DatabaseConfig) string {
	if cfg.Driver == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}
