package models

import "time"

// Message statuses
const (
	StatusQueued    = "queued"
	StatusSending   = "sending"
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Message sources
const (
	SourceCampaign = "campaign"
	SourceManual   = "manual"
)

// QueuedMessage is one fully-rendered, addressed email awaiting or having
// completed a delivery attempt. CampaignID is informational only: deleting
// a campaign must not break its queued messages.
type QueuedMessage struct {
	ID           string     `json:"id"`
	CampaignID   string     `json:"campaign_id,omitempty"` // empty for manual composes
	AccountID    string     `json:"account_id"`
	FromAddress  string     `json:"from_address"`
	ToAddress    string     `json:"to_address"`
	Subject      string     `json:"subject"`
	BodyHTML     string     `json:"body_html"`
	BodyText     string     `json:"body_text,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	Status       string     `json:"status"`
	LastError    string     `json:"last_error,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	Source       string     `json:"source"`
	Metadata     string     `json:"metadata,omitempty"` // JSON, sequence-step provenance
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// QueueFilter for filtering queued messages
type QueueFilter struct {
	Status     string
	CampaignID string
	Limit      int
	Offset     int
}

// QueueStats holds message counts by status.
type QueueStats struct {
	Queued    int `json:"queued"`
	Sending   int `json:"sending"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}
