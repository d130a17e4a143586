package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to PeriodStatus
		want     bool
	}{
		{StatusPlanning, StatusActive, true},
		{StatusActive, StatusPreClosed, true},
		{StatusPreClosed, StatusClosed, true},

		// No skipping.
		{StatusPlanning, StatusPreClosed, false},
		{StatusPlanning, StatusClosed, false},
		{StatusActive, StatusClosed, false},

		// No backward moves.
		{StatusActive, StatusPlanning, false},
		{StatusPreClosed, StatusActive, false},
		{StatusClosed, StatusPreClosed, false},

		// CLOSED is terminal.
		{StatusClosed, StatusClosed, false},
		{StatusClosed, StatusActive, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPeriodStatus_Valid(t *testing.T) {
	for _, s := range []PeriodStatus{StatusPlanning, StatusActive, StatusPreClosed, StatusClosed} {
		assert.True(t, s.Valid(), "%s", s)
	}
	assert.False(t, PeriodStatus("OPEN").Valid())
	assert.False(t, PeriodStatus("").Valid())
}

func TestMonthKeyHelpers(t *testing.T) {
	t.Run("MonthKeyOf", func(t *testing.T) {
		assert.Equal(t, "2026-08", MonthKeyOf(time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)))
		assert.Equal(t, "2026-01", MonthKeyOf(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("ParseMonthKey rejects malformed keys", func(t *testing.T) {
		for _, key := range []string{"", "2026", "2026-13", "2026/08", "aug-2026"} {
			_, err := ParseMonthKey(key)
			assert.Error(t, err, "key %q", key)
		}
	})

	t.Run("NextMonthKey rolls over the year", func(t *testing.T) {
		next, err := NextMonthKey("2026-12")
		require.NoError(t, err)
		assert.Equal(t, "2027-01", next)

		next, err = NextMonthKey("2026-08")
		require.NoError(t, err)
		assert.Equal(t, "2026-09", next)
	})

	t.Run("MonthBounds", func(t *testing.T) {
		start, end, err := MonthBounds("2026-02")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), end)

		// Leap year.
		_, end, err = MonthBounds("2028-02")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), end)

		_, _, err = MonthBounds("not-a-month")
		assert.Error(t, err)
	})
}

func TestCompetitionPeriod_IsClosed(t *testing.T) {
	p := &CompetitionPeriod{Status: StatusPreClosed}
	assert.False(t, p.IsClosed())
	p.Status = StatusClosed
	assert.True(t, p.IsClosed())
}
