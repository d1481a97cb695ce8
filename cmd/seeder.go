package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	appErrors "github.com/frahmantamala/expense-reports/internal"
	userDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-reports/internal/core/date"
	"github.com/frahmantamala/expense-reports/internal/expense"
	"github.com/frahmantamala/expense-reports/internal/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo user and a sample report for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		if err := seed(context.Background(), deps); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}

func seed(ctx context.Context, deps *Dependencies) error {
	db := deps.Gorm.WithContext(ctx)

	if clearData {
		for _, table := range []string{"attachments", "expenses", "expense_reports", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		fmt.Println("Cleared existing data")
	}

	demo := userDatamodel.User{
		ID:         deps.Config.Auth.DefaultUserID,
		Email:      "demo@mail.com",
		Name:       "Demo Employee",
		Department: "Sales",
		IsActive:   true,
	}
	var existing userDatamodel.User
	err := db.Where("email = ?", demo.Email).First(&existing).Error
	switch {
	case err == nil:
		fmt.Println("demo user already exists:", demo.Email)
		demo = existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(&demo).Error; err != nil {
			return fmt.Errorf("failed to insert demo user: %w", err)
		}
		fmt.Println("Seeded demo user:", demo.Email)
	default:
		return fmt.Errorf("failed to look up demo user: %w", err)
	}

	// reports go through the services so totals are derived the normal way
	rep, err := deps.Reports.CreateReport(ctx, demo.ID, report.CreateReportDTO{
		Purpose:    "Customer workshop in Jakarta",
		ReportDate: date.Today(),
	})
	if err != nil {
		return fmt.Errorf("failed to create sample report: %w", err)
	}

	samples := []struct {
		category string
		name     string
		amount   string
	}{
		{"TRAVEL", "Return flight", "245.80"},
		{"ACCOMMODATION", "Hotel, two nights", "310.00"},
		{"MEALS", "Team dinner", "86.45"},
		{"TRANSPORT", "Airport taxi", "32.10"},
	}
	for _, s := range samples {
		name := s.name
		if _, err := deps.Expenses.CreateExpense(ctx, expense.CreateExpenseDTO{
			ReportID:    rep.ID,
			Category:    s.category,
			ExpenseName: &name,
			Amount:      decimal.RequireFromString(s.amount),
			ExpenseDate: date.Today(),
		}); err != nil {
			if appErr, ok := appErrors.IsAppError(err); ok {
				return fmt.Errorf("failed to add sample expense %q: %s", s.name, appErr.GetDetailedMessage())
			}
			return fmt.Errorf("failed to add sample expense %q: %w", s.name, err)
		}
	}

	seeded, err := deps.Reports.GetReport(ctx, rep.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded report %s with total %s\n", seeded.ID, seeded.TotalAmount.StringFixed(2))
	return nil
}
