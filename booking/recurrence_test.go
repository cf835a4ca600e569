package booking_test

import (
	"testing"
	"time"

	bk "github.com/jmorel/room-booking-backend/booking"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func occurrences(n int) *int {
	return &n
}

func TestExpandWeeklyPattern(t *testing.T) {

	t.Run("one date per selected weekday", func(t *testing.T) {
		// Mon/Wed/Fri starting Monday 2024-01-01, six occurrences.
		pattern := bk.RecurringPattern{
			Frequency:      bk.FrequencyWeekly,
			Interval:       1,
			DaysOfWeek:     []int{1, 3, 5},
			MaxOccurrences: occurrences(6),
		}

		dates, err := bk.ExpandPattern(date(2024, time.January, 1), pattern)

		require.NoError(t, err)
		require.Equal(t, []time.Time{
			date(2024, time.January, 1),
			date(2024, time.January, 3),
			date(2024, time.January, 5),
			date(2024, time.January, 8),
			date(2024, time.January, 10),
			date(2024, time.January, 12),
		}, dates)
	})

	t.Run("interval skips whole weeks", func(t *testing.T) {
		pattern := bk.RecurringPattern{
			Frequency:      bk.FrequencyWeekly,
			Interval:       2,
			DaysOfWeek:     []int{1},
			MaxOccurrences: occurrences(3),
		}

		dates, err := bk.ExpandPattern(date(2024, time.January, 1), pattern)

		require.NoError(t, err)
		require.Equal(t, []time.Time{
			date(2024, time.January, 1),
			date(2024, time.January, 15),
			date(2024, time.January, 29),
		}, dates)
	})

	t.Run("only selected weekdays in order", func(t *testing.T) {
		pattern := bk.RecurringPattern{
			Frequency:      bk.FrequencyWeekly,
			Interval:       1,
			DaysOfWeek:     []int{2, 4},
			MaxOccurrences: occurrences(8),
		}

		dates, err := bk.ExpandPattern(date(2024, time.March, 4), pattern)

		require.NoError(t, err)
		require.Len(t, dates, 8)

		for i, d := range dates {
			require.Contains(t, []time.Weekday{time.Tuesday, time.Thursday}, d.Weekday())

			if i > 0 {
				require.True(t, dates[i-1].Before(d), "dates must be strictly increasing")
			}
		}
	})

	t.Run("sunday is weekday seven", func(t *testing.T) {
		pattern := bk.RecurringPattern{
			Frequency:      bk.FrequencyWeekly,
			Interval:       1,
			DaysOfWeek:     []int{7},
			MaxOccurrences: occurrences(2),
		}

		dates, err := bk.ExpandPattern(date(2024, time.January, 1), pattern)

		require.NoError(t, err)
		require.Equal(t, []time.Time{
			date(2024, time.January, 7),
			date(2024, time.January, 14),
		}, dates)
	})
}

func TestExpandDailyPattern(t *testing.T) {

	t.Run("steps by interval days", func(t *testing.T) {
		pattern := bk.RecurringPattern{
			Frequency:      bk.FrequencyDaily,
			Interval:       3,
			MaxOccurrences: occurrences(4),
		}

		dates, err := bk.ExpandPattern(date(2024, time.May, 1), pattern)

		require.NoError(t, err)
		require.Equal(t, []time.Time{
			date(2024, time.May, 1),
			date(2024, time.May, 4),
			date(2024, time.May, 7),
			date(2024, time.May, 10),
		}, dates)
	})

	t.Run("end date is inclusive and nothing beyond it", func(t *testing.T) {
		end := date(2024, time.January, 5)
		pattern := bk.RecurringPattern{
			Frequency: bk.FrequencyDaily,
			Interval:  1,
			EndDate:   &end,
		}

		dates, err := bk.ExpandPattern(date(2024, time.January, 1), pattern)

		require.NoError(t, err)
		require.Len(t, dates, 5)
		require.Equal(t, end, dates[4])

		for _, d := range dates {
			require.False(t, d.After(end))
		}
	})
}

func TestExpandMonthlyPattern(t *testing.T) {

	t.Run("holds day of month", func(t *testing.T) {
		pattern := bk.RecurringPattern{
			Frequency:      bk.FrequencyMonthly,
			Interval:       2,
			MaxOccurrences: occurrences(3),
		}

		dates, err := bk.ExpandPattern(date(2024, time.January, 15), pattern)

		require.NoError(t, err)
		require.Equal(t, []time.Time{
			date(2024, time.January, 15),
			date(2024, time.March, 15),
			date(2024, time.May, 15),
		}, dates)
	})

	t.Run("skips months without the day", func(t *testing.T) {
		pattern := bk.RecurringPattern{
			Frequency:      bk.FrequencyMonthly,
			Interval:       1,
			MaxOccurrences: occurrences(5),
		}

		dates, err := bk.ExpandPattern(date(2024, time.January, 31), pattern)

		require.NoError(t, err)
		require.Equal(t, []time.Time{
			date(2024, time.January, 31),
			date(2024, time.March, 31),
			date(2024, time.May, 31),
			date(2024, time.July, 31),
			date(2024, time.August, 31),
		}, dates)
	})
}

func TestPatternValidation(t *testing.T) {
	end := date(2024, time.June, 30)

	testCases := []struct {
		name    string
		pattern bk.RecurringPattern
	}{
		{
			name:    "unknown frequency",
			pattern: bk.RecurringPattern{Frequency: "yearly", Interval: 1, MaxOccurrences: occurrences(3)},
		},
		{
			name:    "zero interval",
			pattern: bk.RecurringPattern{Frequency: bk.FrequencyDaily, Interval: 0, MaxOccurrences: occurrences(3)},
		},
		{
			name:    "both end conditions",
			pattern: bk.RecurringPattern{Frequency: bk.FrequencyDaily, Interval: 1, EndDate: &end, MaxOccurrences: occurrences(3)},
		},
		{
			name:    "neither end condition",
			pattern: bk.RecurringPattern{Frequency: bk.FrequencyDaily, Interval: 1},
		},
		{
			name:    "weekly without weekdays",
			pattern: bk.RecurringPattern{Frequency: bk.FrequencyWeekly, Interval: 1, MaxOccurrences: occurrences(3)},
		},
		{
			name:    "weekday out of range",
			pattern: bk.RecurringPattern{Frequency: bk.FrequencyWeekly, Interval: 1, DaysOfWeek: []int{0}, MaxOccurrences: occurrences(3)},
		},
		{
			name:    "negative occurrence count",
			pattern: bk.RecurringPattern{Frequency: bk.FrequencyDaily, Interval: 1, MaxOccurrences: occurrences(-1)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.pattern.Validate(), bk.ErrInvalidPattern)

			_, err := bk.ExpandPattern(date(2024, time.January, 1), tc.pattern)
			require.ErrorIs(t, err, bk.ErrInvalidPattern)
		})
	}
}

func TestApplyExclusions(t *testing.T) {
	instances := []bk.RecurringInstance{
		{Date: date(2024, time.January, 1), Available: true},
		{Date: date(2024, time.January, 3), Available: true},
		{Date: date(2024, time.January, 5), Available: false, ConflictID: "b-1"},
	}

	t.Run("marks matching dates without removing them", func(t *testing.T) {
		excluded := []time.Time{date(2024, time.January, 3)}

		result := bk.ApplyExclusions(instances, excluded)

		require.Len(t, result, 3)
		require.False(t, result[0].Excluded)
		require.True(t, result[1].Excluded)
		require.False(t, result[2].Excluded)

		// Original list untouched.
		require.False(t, instances[1].Excluded)
	})

	t.Run("is idempotent", func(t *testing.T) {
		excluded := []time.Time{date(2024, time.January, 1), date(2024, time.January, 5)}

		once := bk.ApplyExclusions(instances, excluded)
		twice := bk.ApplyExclusions(once, excluded)

		require.Equal(t, once, twice)
	})

	t.Run("toggling back clears the exclusion", func(t *testing.T) {
		excluded := []time.Time{date(2024, time.January, 3)}

		result := bk.ApplyExclusions(instances, excluded)
		require.True(t, result[1].Excluded)

		result = bk.ApplyExclusions(result, nil)
		require.False(t, result[1].Excluded)
	})

	t.Run("ignores dates that match no instance", func(t *testing.T) {
		excluded := []time.Time{date(2025, time.December, 25)}

		result := bk.ApplyExclusions(instances, excluded)

		for _, instance := range result {
			require.False(t, instance.Excluded)
		}
	})
}
