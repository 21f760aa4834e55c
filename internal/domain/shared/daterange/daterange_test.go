package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/domain/shared/daterange"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDays(t *testing.T) {
	t.Run("single day rental is one day", func(t *testing.T) {
		dr, err := daterange.New(date(2024, 1, 1), date(2024, 1, 2))
		require.NoError(t, err)
		assert.Equal(t, 1, dr.Days())
	})

	t.Run("partial days round up", func(t *testing.T) {
		start := date(2024, 1, 1).Add(10 * time.Hour)
		dr, err := daterange.New(start, start.Add(49*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 3, dr.Days())
	})

	t.Run("end before or equal to start is rejected", func(t *testing.T) {
		_, err := daterange.New(date(2024, 1, 2), date(2024, 1, 2))
		assert.ErrorIs(t, err, daterange.ErrInvalidRange)
		_, err = daterange.New(date(2024, 1, 3), date(2024, 1, 2))
		assert.ErrorIs(t, err, daterange.ErrInvalidRange)
		assert.Equal(t, 0, daterange.DateRange{Start: date(2024, 1, 3), End: date(2024, 1, 2)}.Days())
	})
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a := daterange.OfDays(date(2024, 1, 1), 3)
	assert.True(t, a.Overlaps(daterange.OfDays(date(2024, 1, 3), 1)))
	assert.False(t, a.Overlaps(daterange.OfDays(date(2024, 1, 4), 2)))
}

func TestEachDay(t *testing.T) {
	var seen []time.Time
	daterange.OfDays(date(2024, 2, 28), 3).EachDay(func(day time.Time) bool {
		seen = append(seen, day)
		return true
	})
	assert.Equal(t, []time.Time{date(2024, 2, 28), date(2024, 2, 29), date(2024, 3, 1)}, seen)
}
