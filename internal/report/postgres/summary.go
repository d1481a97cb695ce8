package postgres

import (
	"context"

	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	"github.com/frahmantamala/expense-reports/internal/report"
	"github.com/jmoiron/sqlx"
)

const summaryQuery = `
SELECT status, COUNT(*) AS report_count, COALESCE(SUM(total_amount), 0) AS total_amount
FROM expense_reports
WHERE user_id = ?
GROUP BY status
ORDER BY status`

// SummaryReader runs the per-status aggregate as plain SQL over sqlx.
type SummaryReader struct {
	db *sqlx.DB
}

func NewSummaryReader(db *sqlx.DB) report.SummaryReader {
	return &SummaryReader{db: db}
}

func (s *SummaryReader) Summary(ctx context.Context, userID int64) ([]reportDatamodel.StatusSummary, error) {
	var rows []reportDatamodel.StatusSummary
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(summaryQuery), userID); err != nil {
		return nil, err
	}
	return rows, nil
}
