package validator

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-06-01T12:30:00Z", time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{"2024-06-01T12:30:00.250Z", time.Date(2024, 6, 1, 12, 30, 0, 250_000_000, time.UTC)},
		{"2024-06-01T14:30:00+02:00", time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{"2024-06-01T12:30:00", time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{"2024-06-01T12:30", time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{"2024-06-01 12:30:00", time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{"2024-06-01 12:30", time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)},
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTimestamp(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, raw := range []string{"", "tomorrow", "2024-13-01", "01/06/2024", "2024-06-01T25:00:00Z"} {
		_, err := ParseTimestamp(raw)
		assert.Error(t, err, raw)
	}
}

type snoozeRequest struct {
	SnoozedTill *string `json:"snoozed_till"`
	Title       string  `json:"title,omitempty" validate:"required"`
}

func TestValidatorUsesJSONNames(t *testing.T) {
	v := New()

	err := v.Struct(snoozeRequest{})
	require.Error(t, err)
	assert.Equal(t, map[string][]string{"title": {"This field is required."}}, FieldErrors(err))

	assert.NoError(t, v.Struct(snoozeRequest{Title: "x"}))
	assert.Error(t, Register(nil))
}

func TestFieldErrorsFromJSONTypeError(t *testing.T) {
	var req snoozeRequest
	err := json.Unmarshal([]byte(`{"snoozed_till": 42}`), &req)
	require.Error(t, err)

	fields := FieldErrors(err)
	require.Contains(t, fields, "snoozed_till")
	assert.Contains(t, fields["snoozed_till"][0], "got number")

	assert.Nil(t, FieldErrors(errors.New("unexpected EOF")))
}
