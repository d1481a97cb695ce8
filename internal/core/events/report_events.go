package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeReportStatusChanged   = "report.status_changed"
	EventTypeReportTotalRecomputed = "report.total_recalculated"
)

type ReportStatusChangedEvent struct {
	BaseEvent
	ReportID    string     `json:"report_id"`
	UserID      int64      `json:"user_id"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

func NewReportStatusChangedEvent(reportID string, userID int64, from, to string, paymentDate *time.Time) *ReportStatusChangedEvent {
	data := map[string]interface{}{
		"report_id": reportID,
		"user_id":   userID,
		"from":      from,
		"to":        to,
	}
	if paymentDate != nil {
		data["payment_date"] = paymentDate.Format("2006-01-02")
	}
	return &ReportStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReportStatusChanged,
			Timestamp: time.Now(),
			Data:      data,
		},
		ReportID:    reportID,
		UserID:      userID,
		From:        from,
		To:          to,
		PaymentDate: paymentDate,
	}
}

type ReportTotalRecalculatedEvent struct {
	BaseEvent
	ReportID string `json:"report_id"`
	Total    string `json:"total"`
	Trigger  string `json:"trigger"`
}

func NewReportTotalRecalculatedEvent(reportID, total, trigger string) *ReportTotalRecalculatedEvent {
	return &ReportTotalRecalculatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReportTotalRecomputed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"report_id": reportID,
				"total":     total,
				"trigger":   trigger,
			},
		},
		ReportID: reportID,
		Total:    total,
		Trigger:  trigger,
	}
}
