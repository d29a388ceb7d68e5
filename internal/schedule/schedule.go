// Package schedule decides whether a campaign should fire at a given
// instant. Schedule configs are stored as loose JSON and decoded here into
// typed variants; anything that does not decode cleanly becomes
// Unrecognized, which never fires.
package schedule

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mailward/mailward/internal/models"
)

// Schedule is a decoded campaign schedule.
type Schedule interface {
	// ShouldRun reports whether a campaign with this schedule and the
	// given last run time should fire at now. Evaluation is in UTC.
	ShouldRun(lastRunAt *time.Time, now time.Time) bool
}

// OneTime fires once at or after RunAt, and never again after the
// campaign has been stamped.
type OneTime struct {
	RunAt time.Time
}

func (s OneTime) ShouldRun(lastRunAt *time.Time, now time.Time) bool {
	return lastRunAt == nil && !now.Before(s.RunAt)
}

// DailyRecurring fires once per UTC calendar day at or after the
// configured wall-clock time. Comparing by calendar date rather than
// elapsed duration lets a late runner catch up, but only once per day.
type DailyRecurring struct {
	Hour   int
	Minute int
}

func (s DailyRecurring) ShouldRun(lastRunAt *time.Time, now time.Time) bool {
	now = now.UTC()
	scheduledTime := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, time.UTC)
	if now.Before(scheduledTime) {
		return false
	}
	if lastRunAt == nil {
		return true
	}
	ly, lm, ld := lastRunAt.UTC().Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}

// Unrecognized is any schedule that could not be decoded. It never fires.
type Unrecognized struct{}

func (Unrecognized) ShouldRun(*time.Time, time.Time) bool { return false }

type rawConfig struct {
	RunAt  string          `json:"run_at"`
	Freq   string          `json:"freq"`
	Hour   json.RawMessage `json:"hour"`
	Minute json.RawMessage `json:"minute"`
}

// Decode parses a campaign's schedule type and config into a Schedule.
// Malformed configs are not an error: they decode to Unrecognized so a
// misconfigured campaign degrades to never firing instead of breaking
// the whole sweep.
func Decode(scheduleType, configJSON string) Schedule {
	var cfg rawConfig
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			return Unrecognized{}
		}
	}

	switch scheduleType {
	case models.ScheduleOneTime:
		runAt, ok := parseTimestamp(cfg.RunAt)
		if !ok {
			return Unrecognized{}
		}
		return OneTime{RunAt: runAt}

	case models.ScheduleRecurring:
		if cfg.Freq != "daily" {
			return Unrecognized{}
		}
		return DailyRecurring{
			Hour:   intOrZero(cfg.Hour),
			Minute: intOrZero(cfg.Minute),
		}
	}

	return Unrecognized{}
}

// ShouldRun is the trigger evaluator: a pure function of the campaign's
// persisted state and the current time.
func ShouldRun(c *models.Campaign, now time.Time) bool {
	return Decode(c.ScheduleType, c.ScheduleConfig).ShouldRun(c.LastRunAt, now)
}

// parseTimestamp accepts RFC 3339 timestamps; a naive timestamp without a
// zone offset is treated as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// intOrZero coerces a JSON number or numeric string to int, defaulting
// to 0 for anything else.
func intOrZero(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if m, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return m
		}
	}
	return 0
}
