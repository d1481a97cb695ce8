package expense_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"

	appErrors "github.com/frahmantamala/expense-reports/internal"
	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/expense"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	applog "github.com/frahmantamala/expense-reports/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

var _ = Describe("Expense Service", func() {
	var (
		ctx       context.Context
		store     *memoryStore
		publisher *recordingPublisher
		service   *expense.Service
	)

	addReport := func(id string, status reportstatus.Status) {
		store.reports[id] = &reportDatamodel.Report{
			ID:          id,
			Purpose:     "Paris trip",
			ReportDate:  date.MustParse("2026-02-01"),
			TotalAmount: decimal.Zero,
			Status:      status,
			UserID:      1,
		}
	}

	createDTO := func(reportID, value string) expense.CreateExpenseDTO {
		return expense.CreateExpenseDTO{
			ReportID:    reportID,
			Category:    "MEALS",
			Amount:      amount(value),
			ExpenseDate: date.MustParse("2026-02-02"),
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = newMemoryStore()
		publisher = &recordingPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = expense.NewService(store, store, store, publisher, logger)
		addReport("r1", reportstatus.Created)
	})

	Describe("CreateExpense", func() {
		It("should sum two expenses onto the report total", func() {
			_, err := service.CreateExpense(ctx, createDTO("r1", "85.00"))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateExpense(ctx, createDTO("r1", "90.00"))
			Expect(err).NotTo(HaveOccurred())

			Expect(store.total("r1").StringFixed(2)).To(Equal("175.00"))
			Expect(publisher.count()).To(Equal(2))
		})

		It("should persist the expense in CREATED", func() {
			created, err := service.CreateExpense(ctx, createDTO("r1", "12.34"))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Status).To(Equal(reportstatus.Created))
			Expect(store.expenses).To(HaveKey(created.ID))
		})

		It("should keep exact cents across many additions", func() {
			for i := 0; i < 10; i++ {
				_, err := service.CreateExpense(ctx, createDTO("r1", "0.10"))
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(store.total("r1").Equal(amount("1.00"))).To(BeTrue())
		})

		It("should fail with not found for an unknown report", func() {
			_, err := service.CreateExpense(ctx, createDTO("missing", "10"))
			Expect(appErrors.HasCode(err, appErrors.ErrCodeReportNotFound)).To(BeTrue())
			Expect(store.expenses).To(BeEmpty())
		})

		It("should accept expenses while the report is SUBMITTED", func() {
			addReport("r2", reportstatus.Submitted)
			_, err := service.CreateExpense(ctx, createDTO("r2", "10"))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.total("r2").StringFixed(2)).To(Equal("10.00"))
		})

		DescribeTable("should reject writes to locked reports and leave the total alone",
			func(status reportstatus.Status) {
				addReport("locked", status)
				store.reports["locked"].TotalAmount = amount("50.00")

				_, err := service.CreateExpense(ctx, createDTO("locked", "10"))
				Expect(appErrors.HasCode(err, appErrors.ErrCodeReportNotModifiable)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring(string(status)))
				Expect(store.expenses).To(BeEmpty())
				Expect(store.total("locked").Equal(amount("50.00"))).To(BeTrue())
				Expect(store.totalWrites).To(BeZero())
			},
			Entry("validated", reportstatus.Validated),
			Entry("rejected", reportstatus.Rejected),
			Entry("paid", reportstatus.Paid),
		)

		DescribeTable("should validate input before touching storage",
			func(mutate func(*expense.CreateExpenseDTO), field string) {
				dto := createDTO("r1", "10")
				mutate(&dto)

				_, err := service.CreateExpense(ctx, dto)
				appErr, ok := appErrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(400))
				Expect(appErr.GetDetailedMessage()).To(ContainSubstring(field))
				Expect(store.expenses).To(BeEmpty())
			},
			Entry("zero amount", func(d *expense.CreateExpenseDTO) { d.Amount = decimal.Zero }, "amount"),
			Entry("below a cent", func(d *expense.CreateExpenseDTO) { d.Amount = amount("0.001") }, "amount"),
			Entry("three decimals", func(d *expense.CreateExpenseDTO) { d.Amount = amount("10.005") }, "amount"),
			Entry("negative", func(d *expense.CreateExpenseDTO) { d.Amount = amount("-5") }, "amount"),
			Entry("unknown category", func(d *expense.CreateExpenseDTO) { d.Category = "GROCERIES" }, "category"),
			Entry("missing date", func(d *expense.CreateExpenseDTO) { d.ExpenseDate = date.Date{} }, "expenseDate"),
			Entry("missing report", func(d *expense.CreateExpenseDTO) { d.ReportID = "" }, "reportId"),
		)

		It("should roll back the expense when the recomputation fails", func() {
			store.failTotalWrite = errors.New("disk full")

			_, err := service.CreateExpense(ctx, createDTO("r1", "10"))
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(appErrors.ErrorTypeInternal))
			Expect(store.expenses).To(BeEmpty())
			Expect(store.total("r1").IsZero()).To(BeTrue())
			Expect(publisher.count()).To(BeZero())
		})
	})

	Describe("UpdateExpense", func() {
		var existingID string

		BeforeEach(func() {
			created, err := service.CreateExpense(ctx, createDTO("r1", "85.00"))
			Expect(err).NotTo(HaveOccurred())
			existingID = created.ID
			store.totalWrites = 0
		})

		It("should not recompute when only the description changes", func() {
			updated, err := service.UpdateExpense(ctx, existingID, expense.UpdateExpenseDTO{
				Description: strPtr("Dinner with client"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.Description).To(Equal("Dinner with client"))
			Expect(store.totalWrites).To(BeZero())
			Expect(store.total("r1").StringFixed(2)).To(Equal("85.00"))
		})

		It("should not recompute when the amount is resent unchanged", func() {
			same := amount("85")
			_, err := service.UpdateExpense(ctx, existingID, expense.UpdateExpenseDTO{Amount: &same})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.totalWrites).To(BeZero())
		})

		It("should recompute when the amount changes", func() {
			changed := amount("100.25")
			updated, err := service.UpdateExpense(ctx, existingID, expense.UpdateExpenseDTO{Amount: &changed})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Amount.Equal(changed)).To(BeTrue())
			Expect(store.totalWrites).To(Equal(1))
			Expect(store.total("r1").StringFixed(2)).To(Equal("100.25"))
		})

		It("should only apply present fields", func() {
			_, err := service.UpdateExpense(ctx, existingID, expense.UpdateExpenseDTO{
				ExpenseName: strPtr("Bistro"),
			})
			Expect(err).NotTo(HaveOccurred())

			stored := store.expenses[existingID]
			Expect(*stored.ExpenseName).To(Equal("Bistro"))
			Expect(stored.Category).To(Equal("MEALS"))
			Expect(stored.ExpenseDate.String()).To(Equal("2026-02-02"))
		})

		It("should fail with not found for an unknown expense", func() {
			_, err := service.UpdateExpense(ctx, "missing", expense.UpdateExpenseDTO{Description: strPtr("x")})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeExpenseNotFound)).To(BeTrue())
		})

		It("should refuse updates once the report is paid", func() {
			store.reports["r1"].Status = reportstatus.Paid
			changed := amount("1")

			_, err := service.UpdateExpense(ctx, existingID, expense.UpdateExpenseDTO{Amount: &changed})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeReportNotModifiable)).To(BeTrue())
			Expect(store.expenses[existingID].Amount.Equal(amount("85"))).To(BeTrue())
			Expect(store.total("r1").StringFixed(2)).To(Equal("85.00"))
		})

		It("should roll back the amount change when the sum fails", func() {
			store.failSum = errors.New("timeout")
			changed := amount("1")

			_, err := service.UpdateExpense(ctx, existingID, expense.UpdateExpenseDTO{Amount: &changed})
			Expect(err).To(HaveOccurred())
			Expect(store.expenses[existingID].Amount.Equal(amount("85"))).To(BeTrue())
		})

		It("should reject an invalid patch amount", func() {
			bad := amount("0")
			_, err := service.UpdateExpense(ctx, existingID, expense.UpdateExpenseDTO{Amount: &bad})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("amount"))
		})
	})

	Describe("RemoveExpense", func() {
		It("should recompute the total after deleting", func() {
			first, err := service.CreateExpense(ctx, createDTO("r1", "85.00"))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateExpense(ctx, createDTO("r1", "90.00"))
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RemoveExpense(ctx, first.ID)).To(Succeed())
			Expect(store.total("r1").StringFixed(2)).To(Equal("90.00"))
			Expect(store.expenses).NotTo(HaveKey(first.ID))
		})

		It("should bring the total back to zero when the last expense goes", func() {
			only, err := service.CreateExpense(ctx, createDTO("r1", "42"))
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RemoveExpense(ctx, only.ID)).To(Succeed())
			Expect(store.total("r1").IsZero()).To(BeTrue())
		})

		It("should refuse removal on a validated report", func() {
			created, err := service.CreateExpense(ctx, createDTO("r1", "42"))
			Expect(err).NotTo(HaveOccurred())
			store.reports["r1"].Status = reportstatus.Validated

			err = service.RemoveExpense(ctx, created.ID)
			Expect(appErrors.HasCode(err, appErrors.ErrCodeReportNotModifiable)).To(BeTrue())
			Expect(store.expenses).To(HaveKey(created.ID))
			Expect(store.total("r1").StringFixed(2)).To(Equal("42.00"))
		})

		It("should fail with not found for an unknown expense", func() {
			err := service.RemoveExpense(ctx, "missing")
			Expect(appErrors.HasCode(err, appErrors.ErrCodeExpenseNotFound)).To(BeTrue())
		})
	})

	Describe("RecalculateTotal", func() {
		It("should be idempotent", func() {
			_, err := service.CreateExpense(ctx, createDTO("r1", "19.99"))
			Expect(err).NotTo(HaveOccurred())
			store.reports["r1"].TotalAmount = amount("0")

			first, err := service.RecalculateTotal(ctx, "r1")
			Expect(err).NotTo(HaveOccurred())
			second, err := service.RecalculateTotal(ctx, "r1")
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Equal(second)).To(BeTrue())
			Expect(store.total("r1").StringFixed(2)).To(Equal("19.99"))
		})

		It("should treat a report without expenses as zero", func() {
			store.reports["r1"].TotalAmount = amount("12.00")
			total, err := service.RecalculateTotal(ctx, "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(total.IsZero()).To(BeTrue())
		})

		It("should run regardless of report status", func() {
			addReport("paid", reportstatus.Paid)
			store.reports["paid"].TotalAmount = amount("3.00")

			total, err := service.RecalculateTotal(ctx, "paid")
			Expect(err).NotTo(HaveOccurred())
			Expect(total.IsZero()).To(BeTrue())
		})

		It("should fail with not found for an unknown report", func() {
			_, err := service.RecalculateTotal(ctx, "missing")
			Expect(appErrors.HasCode(err, appErrors.ErrCodeReportNotFound)).To(BeTrue())
		})
	})

	Describe("reads", func() {
		It("should list a report's expenses", func() {
			_, err := service.CreateExpense(ctx, createDTO("r1", "1"))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateExpense(ctx, createDTO("r1", "2"))
			Expect(err).NotTo(HaveOccurred())

			expenses, err := service.ListByReport(ctx, "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(2))
		})

		It("should fail listing for an unknown report", func() {
			_, err := service.ListByReport(ctx, "missing")
			Expect(appErrors.HasCode(err, appErrors.ErrCodeReportNotFound)).To(BeTrue())
		})
	})

	Describe("keeping the total equal to the sum", func() {
		It("should hold after an arbitrary mix of operations", func() {
			var ids []string
			for _, v := range []string{"10.10", "20.20", "0.01", "999.99", "5.55"} {
				created, err := service.CreateExpense(ctx, createDTO("r1", v))
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, created.ID)
			}
			changed := amount("7.77")
			_, err := service.UpdateExpense(ctx, ids[1], expense.UpdateExpenseDTO{Amount: &changed})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.RemoveExpense(ctx, ids[3])).To(Succeed())

			sum, _ := store.SumAmountsByReportID(ctx, "r1")
			Expect(store.total("r1").Equal(sum)).To(BeTrue())
			Expect(store.total("r1").StringFixed(2)).To(Equal("23.43"))
		})
	})

	Describe("logging", func() {
		It("should tag rejections with the request's trace id", func() {
			var buf bytes.Buffer
			traced := expense.NewService(store, store, store, publisher,
				slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
			addReport("paid", reportstatus.Paid)

			reqCtx := applog.With(ctx, "trace_id", "trace-42")
			_, err := traced.CreateExpense(reqCtx, createDTO("paid", "10.00"))
			Expect(appErrors.HasCode(err, appErrors.ErrCodeReportNotModifiable)).To(BeTrue())
			Expect(buf.String()).To(ContainSubstring("trace_id=trace-42"))
		})
	})
})
