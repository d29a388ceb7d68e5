package schedule

import (
	"testing"
	"time"

	"github.com/mailward/mailward/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestOneTimeShouldRun(t *testing.T) {
	runAt := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	s := OneTime{RunAt: runAt}

	tests := []struct {
		name      string
		lastRunAt *time.Time
		now       time.Time
		want      bool
	}{
		{"before run_at", nil, runAt.Add(-time.Minute), false},
		{"exactly run_at", nil, runAt, true},
		{"after run_at", nil, runAt.Add(48 * time.Hour), true},
		{"already run", timePtr(runAt), runAt.Add(time.Hour), false},
		{"already run long ago", timePtr(runAt.Add(-time.Hour)), runAt.Add(24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ShouldRun(tt.lastRunAt, tt.now); got != tt.want {
				t.Errorf("ShouldRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDailyRecurringShouldRun(t *testing.T) {
	s := DailyRecurring{Hour: 9, Minute: 30}
	day := func(d, h, m int) time.Time {
		return time.Date(2026, 8, d, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		lastRunAt *time.Time
		now       time.Time
		want      bool
	}{
		{"never run, before time", nil, day(31, 8, 0), false},
		{"never run, at time", nil, day(31, 9, 30), true},
		{"never run, catch-up late in day", nil, day(31, 23, 0), true},
		{"ran yesterday", timePtr(day(30, 9, 31)), day(31, 9, 30), true},
		{"ran earlier today", timePtr(day(31, 9, 30)), day(31, 14, 0), false},
		{"ran today, next day due", timePtr(day(30, 9, 30)), day(31, 9, 29), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ShouldRun(tt.lastRunAt, tt.now); got != tt.want {
				t.Errorf("ShouldRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDailyRecurringDateBoundaryNotDuration(t *testing.T) {
	// 23:50 yesterday to 09:31 today is under 10 hours, but the calendar
	// date changed, so the campaign fires again.
	s := DailyRecurring{Hour: 9, Minute: 30}
	last := time.Date(2026, 8, 30, 23, 50, 0, 0, time.UTC)
	now := time.Date(2026, 8, 31, 9, 31, 0, 0, time.UTC)

	if !s.ShouldRun(&last, now) {
		t.Error("ShouldRun() = false across a date boundary, want true")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		scheduleType string
		config       string
		want         any
	}{
		{"one_time valid", models.ScheduleOneTime, `{"run_at": "2026-08-31T09:00:00Z"}`,
			OneTime{RunAt: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)}},
		{"one_time naive timestamp is UTC", models.ScheduleOneTime, `{"run_at": "2026-08-31T09:00:00"}`,
			OneTime{RunAt: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)}},
		{"one_time missing run_at", models.ScheduleOneTime, `{}`, Unrecognized{}},
		{"one_time malformed run_at", models.ScheduleOneTime, `{"run_at": "not-a-date"}`, Unrecognized{}},
		{"one_time malformed json", models.ScheduleOneTime, `{run_at`, Unrecognized{}},
		{"recurring daily", models.ScheduleRecurring, `{"freq": "daily", "hour": 9, "minute": 30}`,
			DailyRecurring{Hour: 9, Minute: 30}},
		{"recurring daily string numbers", models.ScheduleRecurring, `{"freq": "daily", "hour": "7", "minute": "15"}`,
			DailyRecurring{Hour: 7, Minute: 15}},
		{"recurring daily defaults to midnight", models.ScheduleRecurring, `{"freq": "daily"}`,
			DailyRecurring{Hour: 0, Minute: 0}},
		{"recurring weekly unsupported", models.ScheduleRecurring, `{"freq": "weekly", "hour": 9}`, Unrecognized{}},
		{"recurring empty config", models.ScheduleRecurring, ``, Unrecognized{}},
		{"unknown type", "cron", `{"expr": "* * * * *"}`, Unrecognized{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.scheduleType, tt.config)
			if got != tt.want {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestUnrecognizedNeverFires(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if (Unrecognized{}).ShouldRun(nil, now) {
		t.Error("Unrecognized.ShouldRun() = true, want false")
	}
}

func TestShouldRunCampaign(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	c := &models.Campaign{
		ScheduleType:   models.ScheduleOneTime,
		ScheduleConfig: `{"run_at": "2026-08-31T09:00:00Z"}`,
	}
	if !ShouldRun(c, now) {
		t.Error("ShouldRun() = false for due one_time campaign")
	}

	c.LastRunAt = timePtr(now.Add(-time.Hour))
	if ShouldRun(c, now) {
		t.Error("ShouldRun() = true for already-run one_time campaign")
	}
}
