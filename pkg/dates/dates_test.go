package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anchor() time.Time {
	// Wednesday
	return time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
}

func TestNormalizeISO(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{"rfc3339", "2025-03-01T09:30:00Z", time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"date only", "2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"date and time", "2025-03-01 14:00", time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.expr, anchor())
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestNormalizeNaturalLanguage(t *testing.T) {
	got := Normalize("tomorrow", anchor())
	require.NotNil(t, got)
	assert.Equal(t, 9, got.Day())
	assert.Equal(t, time.January, got.Month())
}

func TestNormalizeMisspelling(t *testing.T) {
	got := Normalize("tommorow", anchor())
	require.NotNil(t, got)
	assert.Equal(t, 9, got.Day())
}

func TestNormalizeUnparseable(t *testing.T) {
	assert.Nil(t, Normalize("", anchor()))
	assert.Nil(t, Normalize("xyzzy blorf", anchor()))
}

func TestNormalizeWeekdayRollover(t *testing.T) {
	// Friday at 10:00; today's 9am occurrence already passed, so the
	// expression must land on next Friday, not tomorrow.
	friday := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

	got := Normalize("this Friday 9am", friday)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 1, 17, 9, 0, 0, 0, time.UTC), *got)
	assert.Equal(t, time.Friday, got.Weekday())

	// A bare time with no weekday still rolls to the next day.
	got = Normalize("9am", friday)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 1, 11, 9, 0, 0, 0, time.UTC), *got)
}

func TestNextWeekday(t *testing.T) {
	wed := anchor()

	friday := NextWeekday(wed, time.Friday, 9, 0)
	assert.Equal(t, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), friday)

	// Same weekday, time already passed: rolls a full week.
	nextWed := NextWeekday(wed, time.Wednesday, 9, 0)
	assert.Equal(t, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC), nextWed)

	// Same weekday, time still ahead today.
	laterToday := NextWeekday(wed, time.Wednesday, 15, 0)
	assert.Equal(t, time.Date(2025, 1, 8, 15, 0, 0, 0, time.UTC), laterToday)
}
