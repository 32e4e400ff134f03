package model

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

const (
	backendLayout       = "2006-01-02T15:04:05"
	datetimeLocalLayout = "2006-01-02T15:04"
)

// LocalDateTime is a zone-less timestamp as serialized by the backend
// (e.g. "2026-03-01T18:00:00"). It is interpreted in the server's local zone.
type LocalDateTime struct {
	time.Time
}

// UnmarshalJSON accepts null, empty strings, optional fractional seconds and RFC 3339.
func (t *LocalDateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{backendLayout, "2006-01-02T15:04:05.999999999", datetimeLocalLayout} {
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = v
			return nil
		}
	}
	v, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse local date-time %q: %w", s, err)
	}
	t.Time = v.Local()
	return nil
}

// MarshalJSON writes the backend layout, or null for the zero value.
func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(backendLayout) + `"`), nil
}

// InputValue formats the time for an <input type="datetime-local">.
func (t LocalDateTime) InputValue() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(datetimeLocalLayout)
}

// Tone is a display hint for deadline badges.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneClosed  Tone = "closed"
	ToneDanger  Tone = "danger"
	ToneWarning Tone = "warning"
	TonePrimary Tone = "primary"
)

// DeadlineBadge is the countdown label shown on listing cards.
type DeadlineBadge struct {
	Text string
	Tone Tone
}

// Countdown labels a deadline relative to now, comparing calendar days only.
func Countdown(deadline LocalDateTime, now time.Time) DeadlineBadge {
	if deadline.IsZero() {
		return DeadlineBadge{Text: "Always open", Tone: ToneNeutral}
	}
	days := calendarDays(now, deadline.Time)
	switch {
	case days < 0:
		return DeadlineBadge{Text: "Closed", Tone: ToneClosed}
	case days == 0:
		return DeadlineBadge{Text: "D-Day", Tone: ToneDanger}
	case days <= 3:
		return DeadlineBadge{Text: fmt.Sprintf("D-%d", days), Tone: ToneWarning}
	default:
		return DeadlineBadge{Text: fmt.Sprintf("D-%d", days), Tone: TonePrimary}
	}
}

func calendarDays(from, to time.Time) int {
	to = to.In(from.Location())
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
