package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/expense-reports/internal/attachment"
	attachmentPostgres "github.com/frahmantamala/expense-reports/internal/attachment/postgres"
	"github.com/frahmantamala/expense-reports/internal/category"
	attachmentDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/attachment"
	expenseDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/expense"
	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/user"
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
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		pinger *fakePinger
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var out map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &out)).To(Succeed(), w.Body.String())
		return out
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&userDatamodel.User{},
			&reportDatamodel.Report{},
			&expenseDatamodel.Expense{},
			&attachmentDatamodel.Attachment{},
		)).To(Succeed())
		Expect(db.Create(&userDatamodel.User{ID: 1, Email: "ana@example.com", Name: "Ana", IsActive: true}).Error).To(Succeed())

		reg := prometheus.NewRegistry()
		bus := events.NewEventBus(logger)
		report.NewEventHandler(metrics.NewRecorder(reg), logger).Register(bus)

		base := transport.NewBaseHandler(logger)
		storage := attachment.NewLocalFileStorage(GinkgoT().TempDir(), logger)

		userService := user.NewService(userPostgres.NewUserRepository(db), logger)
		reportService := report.NewService(
			reportPostgres.NewReportRepository(db),
			reportPostgres.NewSummaryReader(sqlx.NewDb(sqlDB, "sqlite3")),
			userService,
			storage,
			bus,
			logger,
		)
		expenseRepo := expensePostgres.NewExpenseRepository(db)
		expenseService := expense.NewService(
			expenseRepo,
			expensePostgres.NewReportStore(db),
			expensePostgres.NewTransactor(db),
			bus,
			logger,
		)
		attachmentService := attachment.NewService(attachmentPostgres.NewAttachmentRepository(db), expenseRepo, storage, 1<<20, logger)

		doc, err := swagger.Load(context.Background(), filepath.Join("..", "..", "..", "api", "openapi.yml"))
		Expect(err).NotTo(HaveOccurred())

		pinger = &fakePinger{}
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health:      rest.NewHealthHandler(pinger, "sqlite"),
			Category:    category.NewHandler(base, category.NewService(logger)),
			User:        user.NewHandler(base, userService),
			Report:      report.NewHandler(base, reportService),
			Expense:     expense.NewHandler(base, expenseService),
			Attachment:  attachment.NewHandler(base, attachmentService, 1<<20),
			OpenAPI:     doc,
			Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			MetricsPath: "/metrics",
			HTTPMetrics: middleware.NewHTTPMetrics(reg),
		}, rest.RouterOptions{AllowedOrigins: "*", DefaultUserID: 1}, logger)
	})

	It("should report health from the database ping", func() {
		Expect(do(http.MethodGet, "/api/v1/health", "").Code).To(Equal(http.StatusOK))
		pinger.err = errors.New("connection refused")
		w := do(http.MethodGet, "/api/v1/health", "")
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(w.Body.String()).To(ContainSubstring("connection refused"))
		Expect(do(http.MethodGet, "/api/v1/ping", "").Code).To(Equal(http.StatusOK))
	})

	It("should serve reference data and docs", func() {
		Expect(do(http.MethodGet, "/api/v1/categories", "").Body.String()).To(ContainSubstring("OFFICE_SUPPLIES"))
		Expect(do(http.MethodGet, "/api/v1/categories/meals", "").Body.String()).To(ContainSubstring(`"name":"MEALS"`))
		Expect(do(http.MethodGet, "/api/v1/categories/nope", "").Code).To(Equal(http.StatusNotFound))
		Expect(decode(do(http.MethodGet, "/api/v1/users/me", ""))["email"]).To(Equal("ana@example.com"))
		Expect(do(http.MethodGet, "/openapi.yml", "").Body.String()).To(ContainSubstring("Expense Reports API"))
	})

	It("should run a report from creation to payment", func() {
		w := do(http.MethodPost, "/api/v1/reports", `{"purpose":"Lisbon client visit","reportDate":"2026-03-01"}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		created := decode(w)
		reportID := created["id"].(string)
		Expect(created["status"]).To(Equal("CREATED"))
		Expect(created["totalAmount"]).To(BeNumerically("==", 0))

		w = do(http.MethodPost, "/api/v1/expenses",
			`{"reportId":"`+reportID+`","category":"TRAVEL","amount":120.50,"expenseDate":"2026-03-01"}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		expenseID := decode(w)["id"].(string)

		w = do(http.MethodPost, "/api/v1/expenses",
			`{"reportId":"`+reportID+`","category":"MEALS","amount":29.50,"expenseDate":"2026-03-02"}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())

		Expect(decode(do(http.MethodGet, "/api/v1/reports/"+reportID, ""))["totalAmount"]).To(BeNumerically("==", 150))

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", "ticket.pdf")
		Expect(err).NotTo(HaveOccurred())
		_, _ = part.Write([]byte("%PDF-1.4"))
		Expect(mw.Close()).To(Succeed())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses/"+expenseID+"/attachments", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())

		Expect(do(http.MethodPatch, "/api/v1/reports/"+reportID+"/submit", "").Code).To(Equal(http.StatusOK))

		w = do(http.MethodPatch, "/api/v1/reports/"+reportID+"/submit", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_STATUS_TRANSITION"))

		w = do(http.MethodPatch, "/api/v1/reports/"+reportID+"/pay", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		paid := decode(w)
		Expect(paid["status"]).To(Equal("PAID"))
		Expect(paid["paymentDate"]).NotTo(BeNil())
		Expect(paid["nextStatuses"]).To(BeEmpty())

		w = do(http.MethodPost, "/api/v1/expenses",
			`{"reportId":"`+reportID+`","category":"OTHER","amount":1,"expenseDate":"2026-03-03"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("REPORT_NOT_MODIFIABLE"))

		w = do(http.MethodDelete, "/api/v1/reports/"+reportID, "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("REPORT_NOT_DELETABLE"))

		summary := decode(do(http.MethodGet, "/api/v1/reports/summary", ""))
		Expect(summary["statuses"]).To(ContainElement(And(
			HaveKeyWithValue("status", "PAID"),
			HaveKeyWithValue("count", BeNumerically("==", 1)),
			HaveKeyWithValue("totalAmount", BeNumerically("==", 150)),
		)))
	})

	It("should delete a created report with its expenses", func() {
		reportID := decode(do(http.MethodPost, "/api/v1/reports", `{"purpose":"Team offsite","reportDate":"2026-03-01"}`))["id"].(string)
		w := do(http.MethodPost, "/api/v1/expenses",
			`{"reportId":"`+reportID+`","category":"MEALS","amount":10,"expenseDate":"2026-03-01"}`)
		expenseID := decode(w)["id"].(string)

		Expect(do(http.MethodDelete, "/api/v1/reports/"+reportID, "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/api/v1/reports/"+reportID, "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/api/v1/expenses/"+expenseID, "").Code).To(Equal(http.StatusNotFound))
	})

	It("should expose request metrics by route", func() {
		do(http.MethodGet, "/api/v1/categories", "")
		w := do(http.MethodGet, "/metrics", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`expense_http_requests_total{method="GET",path="/api/v1/categories",status="200"}`))
	})
})
