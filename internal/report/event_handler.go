package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-reports/internal/core/events"
	"github.com/shopspring/decimal"
)

type MetricsRecorder interface {
	ObserveTransition(from, to string)
	ObserveRecalculation(trigger string, total float64)
}

// EventHandler subscribes the audit log and the metrics recorder to report events.
type EventHandler struct {
	metrics MetricsRecorder
	logger  *slog.Logger
}

func NewEventHandler(metrics MetricsRecorder, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		metrics: metrics,
		logger:  logger,
	}
}

func (h *EventHandler) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeReportStatusChanged, h.HandleStatusChanged)
	bus.Subscribe(events.EventTypeReportTotalRecomputed, h.HandleTotalRecalculated)
}

func (h *EventHandler) HandleStatusChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.ReportStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	h.logger.Info("audit: report status changed",
		"event_id", changed.EventID(),
		"report_id", changed.ReportID,
		"user_id", changed.UserID,
		"from", changed.From,
		"to", changed.To,
		"occurred_at", changed.OccurredAt())

	if h.metrics != nil {
		h.metrics.ObserveTransition(changed.From, changed.To)
	}
	return nil
}

func (h *EventHandler) HandleTotalRecalculated(ctx context.Context, event events.Event) error {
	recalculated, ok := event.(*events.ReportTotalRecalculatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T for %s", event, event.EventType())
	}

	total, err := decimal.NewFromString(recalculated.Total)
	if err != nil {
		return fmt.Errorf("parse total for report %s: %w", recalculated.ReportID, err)
	}

	h.logger.Debug("audit: report total recalculated",
		"event_id", recalculated.EventID(),
		"report_id", recalculated.ReportID,
		"total", recalculated.Total,
		"trigger", recalculated.Trigger)

	if h.metrics != nil {
		h.metrics.ObserveRecalculation(recalculated.Trigger, total.InexactFloat64())
	}
	return nil
}
