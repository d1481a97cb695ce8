package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-reports/internal/core/events"
	"github.com/frahmantamala/expense-reports/internal/report"
	"github.com/frahmantamala/expense-reports/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events onto the in-process bus and watch the subscribers react`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long: `Publish a test event to the event bus for testing and debugging.
report.status_changed and report.total_recalculated go through the real report subscribers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventData     string
	eventReportID string
	eventFrom     string
	eventTo       string
	eventTotal    string
)

func publishTestEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	report.NewEventHandler(nil, lg).Register(eventBus)

	var event events.Event
	switch eventType {
	case events.EventTypeReportStatusChanged:
		event = events.NewReportStatusChangedEvent(eventReportID, 0, eventFrom, eventTo, nil)
	case events.EventTypeReportTotalRecomputed:
		event = events.NewReportTotalRecalculatedEvent(eventReportID, eventTotal, "cli")
	default:
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			lg.Info("test handler received event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
		event = events.BaseEvent{
			ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"message": eventData,
				"source":  "cli-command",
			},
		}
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	// synchronous so handler errors surface here
	if err := eventBus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().StringVar(&eventReportID, "report-id", "00000000-0000-0000-0000-000000000000", "Report id carried by report events")
	publishEventCmd.Flags().StringVar(&eventFrom, "from", "CREATED", "Source status for report.status_changed")
	publishEventCmd.Flags().StringVar(&eventTo, "to", "SUBMITTED", "Target status for report.status_changed")
	publishEventCmd.Flags().StringVar(&eventTotal, "total", "0.00", "Total for report.total_recalculated")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
