package tracker_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinkenoogm/ks-bear/internal/tracker"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    tracker.Category
		wantErr bool
	}{
		{in: "Trap 1", want: tracker.Trap1},
		{in: "trap1", want: tracker.Trap1},
		{in: " TRAP  2 ", want: tracker.Trap2},
		{in: "2", want: tracker.Trap2},
		{in: "Trap 3", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := tracker.ParseCategory(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, tracker.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, []tracker.Category{tracker.Trap1, tracker.Trap2}, tracker.Categories())
}

func TestDate(t *testing.T) {
	d, err := tracker.ParseDate("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-28", d.String())
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.False(t, d.IsZero())
	assert.True(t, tracker.Date{}.IsZero())

	_, err = tracker.ParseDate("28/02/2024")
	assert.ErrorIs(t, err, tracker.ErrValidation)

	raw, err := json.Marshal(tracker.Event{ID: 7, Date: d, Category: tracker.Trap1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"date":"2024-02-28","category":"Trap 1"}`, string(raw))

	var event tracker.Event
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, d, event.Date)
}

func TestParseDamage(t *testing.T) {
	tests := map[string]int64{
		"1500":      1500,
		" 42 ":      42,
		"12.9":      12,
		"1e3":       1000,
		"-5":        0,
		"-2.5":      0,
		"abc":       0,
		"":          0,
		"NaN":       0,
		"inf":       0,
		"1e30":      0,
		"1_000":     0,
		"1_000.5":   0,
		"0x10":      0,
		"0x1p4":     0,
		"123456789": 123456789,
	}
	for in, want := range tests {
		assert.Equal(t, want, tracker.ParseDamage(in), "input %q", in)
	}
	assert.Equal(t, int64(0), tracker.ClampDamage(-1))
	assert.Equal(t, int64(3), tracker.ClampDamage(3))
}

func TestWindow(t *testing.T) {
	now := time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC)

	for _, tt := range []struct {
		in    string
		want  tracker.Window
		start string
	}{
		{"", tracker.WindowAll, ""},
		{"All-time", tracker.WindowAll, ""},
		{"7d", tracker.Window7Days, "2024-02-27"},
		{"Last 7 days", tracker.Window7Days, "2024-02-27"},
		{"last 30 days", tracker.Window30Days, "2024-02-04"},
	} {
		w, err := tracker.ParseWindow(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, w)

		start := w.Start(now)
		if tt.start == "" {
			assert.Nil(t, start)
			continue
		}
		require.NotNil(t, start)
		assert.Equal(t, tt.start, start.String())
	}

	_, err := tracker.ParseWindow("yesterday")
	assert.ErrorIs(t, err, tracker.ErrValidation)
	assert.Equal(t, "Last 30 days", tracker.Window30Days.Label())
	assert.Len(t, tracker.Windows(), 3)

	_, err = tracker.ParseWindow(string(tracker.WindowSince))
	assert.ErrorIs(t, err, tracker.ErrValidation, "explicit start dates are not a preset")
	assert.Nil(t, tracker.WindowSince.Start(now))
}
