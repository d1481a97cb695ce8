package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-reports/internal/attachment"
	"github.com/frahmantamala/expense-reports/internal/category"
	"github.com/frahmantamala/expense-reports/internal/expense"
	"github.com/frahmantamala/expense-reports/internal/report"
	"github.com/frahmantamala/expense-reports/internal/transport/middleware"
	"github.com/frahmantamala/expense-reports/internal/transport/swagger"
	"github.com/frahmantamala/expense-reports/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	Health     *HealthHandler
	Category   *category.Handler
	User       *user.Handler
	Report     *report.Handler
	Expense    *expense.Handler
	Attachment *attachment.Handler

	// OpenAPI serves /openapi.yml and enables /swagger/*.
	OpenAPI *swagger.Document
	// Metrics serves MetricsPath outside the API prefix.
	Metrics     http.Handler
	MetricsPath string
	HTTPMetrics *middleware.HTTPMetrics
}

type RouterOptions struct {
	AllowedOrigins string
	DefaultUserID  int64
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions, logger *slog.Logger) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	if h.HTTPMetrics != nil {
		router.Use(h.HTTPMetrics.Middleware)
	}

	if h.Metrics != nil && h.MetricsPath != "" {
		router.Method(http.MethodGet, h.MetricsPath, h.Metrics)
	}
	if h.OpenAPI != nil {
		router.Method(http.MethodGet, "/openapi.yml", h.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.LoggingMiddleware(logger))

		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}
		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
			r.Get("/categories/{name}", h.Category.GetCategory)
		}

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.UserContext(opts.DefaultUserID))

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Post("/", h.Report.CreateReport)
					rr.Get("/", h.Report.ListReports)
					rr.Get("/summary", h.Report.Summary)
					rr.Get("/{id}", h.Report.GetReport)
					rr.Patch("/{id}", h.Report.UpdateReport)
					rr.Delete("/{id}", h.Report.DeleteReport)
					rr.Patch("/{id}/submit", h.Report.SubmitReport)
					rr.Patch("/{id}/validate", h.Report.ValidateReport)
					rr.Patch("/{id}/reject", h.Report.RejectReport)
					rr.Patch("/{id}/pay", h.Report.PayReport)
					rr.Patch("/{id}/reopen", h.Report.ReopenReport)
					if h.Expense != nil {
						rr.Get("/{id}/expenses", h.Expense.ListReportExpenses)
					}
				})
			}

			if h.Expense != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", h.Expense.CreateExpense)
					er.Get("/{id}", h.Expense.GetExpense)
					er.Patch("/{id}", h.Expense.UpdateExpense)
					er.Delete("/{id}", h.Expense.DeleteExpense)
					if h.Attachment != nil {
						er.Post("/{id}/attachments", h.Attachment.UploadAttachment)
						er.Get("/{id}/attachments", h.Attachment.ListAttachments)
					}
				})
			}

			if h.Attachment != nil {
				pr.Get("/attachments/{id}", h.Attachment.DownloadAttachment)
				pr.Delete("/attachments/{id}", h.Attachment.DeleteAttachment)
			}
		})
	})
}
