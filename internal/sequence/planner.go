// Package sequence plans multi-step message drips. A compose submission
// carries a loose JSON list of steps; the planner normalizes it into an
// ordered step list and computes calendar-aware send times for each step.
package sequence

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Offset types
const (
	OffsetImmediate = "immediate"
	OffsetDays      = "days"
	OffsetMonthly   = "monthly"
)

// Step is one normalized step of a sequence.
type Step struct {
	Subject    string
	Body       string
	OffsetType string
	// OffsetValue is the day count for "days" steps.
	OffsetValue int
	// DayOfMonth pins "monthly" steps to a day, clamped to the month's
	// length. Zero means keep the previous time's day.
	DayOfMonth int
	// MonthInterval is the number of months a "monthly" step advances.
	MonthInterval int
}

type rawStep struct {
	Subject       string          `json:"subject"`
	Body          string          `json:"body"`
	OffsetType    string          `json:"offset_type"`
	OffsetValue   json.RawMessage `json:"offset_value"`
	DayOfMonth    json.RawMessage `json:"day_of_month"`
	MonthInterval json.RawMessage `json:"month_interval"`
}

// Plan parses a raw JSON step list into an ordered plan. The planner is
// deliberately forgiving: a malformed payload, or steps missing both their
// own and the fallback subject or body, degrade to a single immediate step
// carrying the fallback content rather than an error.
func Plan(rawSteps, fallbackSubject, fallbackBody string) []Step {
	fallback := Step{
		Subject:    fallbackSubject,
		Body:       fallbackBody,
		OffsetType: OffsetImmediate,
	}

	var raws []rawStep
	if rawSteps != "" {
		if err := json.Unmarshal([]byte(rawSteps), &raws); err != nil {
			raws = nil
		}
	}

	steps := make([]Step, 0, len(raws))
	for _, r := range raws {
		s := Step{
			Subject:       r.Subject,
			Body:          r.Body,
			OffsetType:    r.OffsetType,
			OffsetValue:   coerceInt(r.OffsetValue, 0),
			DayOfMonth:    coerceInt(r.DayOfMonth, 0),
			MonthInterval: coerceInt(r.MonthInterval, 1),
		}
		if s.OffsetType == "" {
			s.OffsetType = OffsetImmediate
		}
		if s.Subject == "" {
			s.Subject = fallbackSubject
		}
		if s.Body == "" {
			s.Body = fallbackBody
		}
		if s.Subject == "" || s.Body == "" {
			continue
		}
		steps = append(steps, s)
	}

	if len(steps) == 0 {
		return []Step{fallback}
	}
	return steps
}

// Advance computes the next send time after previous for a step.
// Unknown offset types leave the time unchanged.
func Advance(previous time.Time, step Step) time.Time {
	switch step.OffsetType {
	case OffsetDays:
		return previous.AddDate(0, 0, step.OffsetValue)

	case OffsetMonthly:
		interval := step.MonthInterval
		if interval == 0 {
			interval = 1
		}
		return addMonthsClamped(previous, interval, step.DayOfMonth)
	}

	return previous
}

// SendTimes folds Advance over the plan, returning one send time per step.
// Immediate steps share the running clock instead of advancing it, so the
// first step of a typical drip goes out at the base time.
func SendTimes(steps []Step, base time.Time) []time.Time {
	times := make([]time.Time, len(steps))
	t := base
	for i, s := range steps {
		t = Advance(t, s)
		times[i] = t
	}
	return times
}

// addMonthsClamped adds months to t and sets the day-of-month, clamped to
// the last valid day of the target month. time.AddDate normalizes overflow
// (Jan 31 + 1 month = Mar 2/3), which is exactly what a billing-style
// schedule must not do, so the arithmetic is explicit here.
func addMonthsClamped(t time.Time, months, dayOfMonth int) time.Time {
	year := t.Year()
	month := int(t.Month()) - 1 + months
	year += month / 12
	month %= 12
	if month < 0 {
		month += 12
		year--
	}

	day := dayOfMonth
	if day <= 0 {
		day = t.Day()
	}
	if last := daysInMonth(year, time.Month(month+1)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month+1), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// coerceInt accepts JSON numbers and numeric strings, anything else
// becomes def. Sequence payloads come from forms, so "7" and 7 are both
// in circulation.
func coerceInt(raw json.RawMessage, def int) int {
	if len(raw) == 0 {
		return def
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return def
}
