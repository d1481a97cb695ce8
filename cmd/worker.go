package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/expense-reports/internal/expense"
	"github.com/frahmantamala/expense-reports/internal/report"
	"github.com/frahmantamala/expense-reports/internal/reportstatus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background maintenance jobs",
	Long:  `Run maintenance jobs with a bounded worker pool, such as rebuilding report totals from their expenses.`,
}

var reconcileWorkerCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute stored report totals from their expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile()
	},
}

var (
	maxWorkers      int
	reconcileStatus string
)

const reconcilePageSize = 100

func runReconcile() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to init dependencies: %w", err)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	filter := report.ListFilter{Limit: reconcilePageSize}
	if reconcileStatus != "" {
		status, err := reportstatus.Parse(reconcileStatus)
		if err != nil {
			return err
		}
		filter.Status = &status
	}

	var reportIDs []string
	for {
		page, err := deps.ReportRepo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}
		for _, r := range page {
			reportIDs = append(reportIDs, r.ID)
		}
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	deps.Logger.Info("starting report reconciliation", "reports", len(reportIDs), "max_workers", maxWorkers)

	result := expense.NewReconciler(deps.Expenses, maxWorkers, deps.Logger).Run(ctx, reportIDs)
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d reports failed to reconcile", len(result.Failed), len(reportIDs))
	}
	return nil
}

func init() {
	reconcileWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 4, "Maximum number of concurrent workers")
	reconcileWorkerCmd.Flags().StringVar(&reconcileStatus, "status", "", "Only reconcile reports in this status")

	workerCmd.AddCommand(reconcileWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
