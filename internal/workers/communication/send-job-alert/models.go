// internal/workers/communication/send-job-alert/models.go
package sendjobalert

import "fractional-quest/internal/models"

type Input struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	// FilterQuery is a search page query string, e.g. "role=CFO&type=remote".
	FilterQuery string `json:"filterQuery"`
	Priority    string `json:"priority,omitempty"`
}

type Output struct {
	NotificationID string                `json:"notificationId"`
	Status         string                `json:"status"`
	MatchCount     int                   `json:"matchCount"`
	SentAt         string                `json:"sentAt"` // ISO 8601
	Deliveries     []models.Notification `json:"deliveries,omitempty"`
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)

const PriorityHigh = "high"
