package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdown(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.Local)
	at := func(days int) LocalDateTime {
		return LocalDateTime{time.Date(2026, 5, 10+days, 9, 0, 0, 0, time.Local)}
	}

	tests := []struct {
		name     string
		deadline LocalDateTime
		want     DeadlineBadge
	}{
		{"no deadline", LocalDateTime{}, DeadlineBadge{"Always open", ToneNeutral}},
		{"yesterday", at(-1), DeadlineBadge{"Closed", ToneClosed}},
		{"earlier today", at(0), DeadlineBadge{"D-Day", ToneDanger}},
		{"in three days", at(3), DeadlineBadge{"D-3", ToneWarning}},
		{"in four days", at(4), DeadlineBadge{"D-4", TonePrimary}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Countdown(tt.deadline, now))
		})
	}
}

func TestLocalDateTime_JSON(t *testing.T) {
	var v struct {
		At LocalDateTime `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2026-03-01T18:00:00"}`), &v))
	assert.Equal(t, "2026-03-01T18:00", v.At.InputValue())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2026-03-01T18:00:00"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"at":""}`), &v))
	assert.True(t, v.At.IsZero())
	assert.Equal(t, "", v.At.InputValue())

	assert.Error(t, json.Unmarshal([]byte(`{"at":"not a date"}`), &v))
}
