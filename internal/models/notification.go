// internal/models/notification.go
package models

// Notification records one delivery attempt of a job alert.
type Notification struct {
	ID         string `json:"id"`
	Channel    string `json:"channel"`   // "email", "sms"
	Recipient  string `json:"recipient"` // address or E.164 number
	Status     string `json:"status"`    // "sent", "failed"
	MatchCount int    `json:"matchCount"`
	Error      string `json:"error,omitempty"`
	SentAt     string `json:"sentAt"`
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
