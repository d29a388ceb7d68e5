package models

import "time"

// Schedule types
const (
	ScheduleOneTime   = "one_time"
	ScheduleRecurring = "recurring"
)

// Campaign is a configured instruction to render a template for matching
// contacts and enqueue delivery, either once or on a recurring schedule.
type Campaign struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	AccountID      string     `json:"account_id"`
	TemplateID     string     `json:"template_id"`
	ScheduleType   string     `json:"schedule_type"`   // one_time, recurring
	ScheduleConfig string     `json:"schedule_config"` // JSON, schema depends on schedule type
	TargetTags     string     `json:"target_tags"`     // comma-separated, empty matches everyone
	Active         bool       `json:"active"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CampaignFilter for filtering campaigns
type CampaignFilter struct {
	Active *bool
	Search string
	Limit  int
	Offset int
}
