package expense

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// Recalculator is the part of Service the reconciler drives.
type Recalculator interface {
	RecalculateTotal(ctx context.Context, reportID string) (decimal.Decimal, error)
}

type ReconcileJob struct {
	ReportID string
}

type ReconcileResult struct {
	Processed int
	Failed    []string
}

type reconcileWorker struct {
	id     int
	jobs   <-chan ReconcileJob
	logger *slog.Logger
}

func (w *reconcileWorker) start(ctx context.Context, wg *sync.WaitGroup, process func(context.Context, ReconcileJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case job, ok := <-w.jobs:
				if !ok {
					return
				}
				w.logger.Debug("worker processing job", "worker_id", w.id, "report_id", job.ReportID)
				process(ctx, job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// Reconciler rewrites stored report totals from their expenses with a fixed
// pool of workers. Each report is recomputed under its own row lock, so it is
// safe to run next to live traffic.
type Reconciler struct {
	recalculator Recalculator
	maxWorkers   int
	logger       *slog.Logger
}

func NewReconciler(recalculator Recalculator, maxWorkers int, logger *slog.Logger) *Reconciler {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Reconciler{
		recalculator: recalculator,
		maxWorkers:   maxWorkers,
		logger:       logger,
	}
}

// Run recomputes every report in reportIDs and returns once all of them are
// done or ctx is cancelled. Reports that were never picked up count as failed.
func (r *Reconciler) Run(ctx context.Context, reportIDs []string) ReconcileResult {
	jobs := make(chan ReconcileJob)
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result ReconcileResult
		done   = make(map[string]bool, len(reportIDs))
	)

	process := func(ctx context.Context, job ReconcileJob) {
		total, err := r.recalculator.RecalculateTotal(ctx, job.ReportID)

		mu.Lock()
		defer mu.Unlock()
		done[job.ReportID] = true
		if err != nil {
			r.logger.Error("failed to reconcile report total", "error", err, "report_id", job.ReportID)
			result.Failed = append(result.Failed, job.ReportID)
			return
		}
		result.Processed++
		r.logger.Debug("report total reconciled", "report_id", job.ReportID, "total", total.StringFixed(2))
	}

	for i := 0; i < r.maxWorkers; i++ {
		w := &reconcileWorker{id: i, jobs: jobs, logger: r.logger}
		w.start(ctx, &wg, process)
	}

dispatch:
	for _, id := range reportIDs {
		select {
		case jobs <- ReconcileJob{ReportID: id}:
		case <-ctx.Done():
			r.logger.Warn("reconciliation cancelled", "error", ctx.Err())
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for _, id := range reportIDs {
		if !done[id] {
			result.Failed = append(result.Failed, id)
		}
	}

	r.logger.Info("reconciliation finished",
		"reports", len(reportIDs),
		"processed", result.Processed,
		"failed", len(result.Failed))
	return result
}
