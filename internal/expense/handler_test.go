package expense_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/expense"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/frahmantamala/expense-reports/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Expense Handler", func() {
	var (
		store  *memoryStore
		router chi.Router
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		store = newMemoryStore()
		store.reports["r1"] = &reportDatamodel.Report{
			ID:          "r1",
			Purpose:     "Paris trip",
			ReportDate:  date.MustParse("2026-02-01"),
			TotalAmount: decimal.Zero,
			Status:      reportstatus.Created,
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := expense.NewService(store, store, store, &recordingPublisher{}, logger)
		handler := expense.NewHandler(transport.NewBaseHandler(logger), service)

		router = chi.NewRouter()
		router.Post("/expenses", handler.CreateExpense)
		router.Get("/expenses/{id}", handler.GetExpense)
		router.Patch("/expenses/{id}", handler.UpdateExpense)
		router.Delete("/expenses/{id}", handler.DeleteExpense)
		router.Get("/reports/{id}/expenses", handler.ListReportExpenses)
	})

	It("should create an expense and render the amount with two decimals", func() {
		w := do(http.MethodPost, "/expenses",
			`{"reportId":"r1","category":"TRAVEL","amount":85,"expenseDate":"2026-02-02","expenseName":"Train"}`)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).To(ContainSubstring(`"amount":85.00`))
		Expect(w.Body.String()).To(ContainSubstring(`"status":"CREATED"`))
		Expect(store.total("r1").StringFixed(2)).To(Equal("85.00"))
	})

	It("should accept amounts sent as strings", func() {
		w := do(http.MethodPost, "/expenses",
			`{"reportId":"r1","category":"MEALS","amount":"12.30","expenseDate":"2026-02-02"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
	})

	It("should return 400 for a non-modifiable report", func() {
		store.reports["r1"].Status = reportstatus.Paid
		w := do(http.MethodPost, "/expenses",
			`{"reportId":"r1","category":"TRAVEL","amount":85,"expenseDate":"2026-02-02"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("REPORT_NOT_MODIFIABLE"))
		Expect(w.Body.String()).To(ContainSubstring("report in status PAID cannot be modified"))
	})

	It("should return 404 for an unknown report", func() {
		w := do(http.MethodPost, "/expenses",
			`{"reportId":"nope","category":"TRAVEL","amount":85,"expenseDate":"2026-02-02"}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should return 400 for a malformed body", func() {
		w := do(http.MethodPost, "/expenses", `{"amount":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should patch, list and delete", func() {
		w := do(http.MethodPost, "/expenses",
			`{"reportId":"r1","category":"TRAVEL","amount":85,"expenseDate":"2026-02-02"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())
		id := created["id"].(string)

		w = do(http.MethodPatch, "/expenses/"+id, `{"amount":"90.50"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(store.total("r1").StringFixed(2)).To(Equal("90.50"))

		w = do(http.MethodGet, "/reports/r1/expenses", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var listed expense.ExpensesResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &listed)).To(Succeed())
		Expect(listed.Expenses).To(HaveLen(1))

		w = do(http.MethodDelete, "/expenses/"+id, "")
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(store.total("r1").IsZero()).To(BeTrue())

		w = do(http.MethodGet, "/expenses/"+id, "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
