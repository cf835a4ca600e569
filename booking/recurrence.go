package booking

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// maxExpandedOccurrences bounds pattern expansion so a far-away end date
// cannot blow up into thousands of candidate dates.
const maxExpandedOccurrences = 366

var rruleWeekdays = map[int]rrule.Weekday{
	1: rrule.MO,
	2: rrule.TU,
	3: rrule.WE,
	4: rrule.TH,
	5: rrule.FR,
	6: rrule.SA,
	7: rrule.SU,
}

// Validate checks the pattern invariants: a known frequency, interval >= 1,
// exactly one end condition, and for weekly patterns a non-empty weekday set
// with values in 1..7.
func (p RecurringPattern) Validate() error {
	switch p.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: unsupported frequency %q", ErrInvalidPattern, p.Frequency)
	}

	if p.Interval < 1 {
		return fmt.Errorf("%w: interval must be at least 1", ErrInvalidPattern)
	}

	if (p.EndDate == nil) == (p.MaxOccurrences == nil) {
		return fmt.Errorf("%w: exactly one of endDate or maxOccurrences must be set", ErrInvalidPattern)
	}

	if p.MaxOccurrences != nil && (*p.MaxOccurrences < 1 || *p.MaxOccurrences > maxExpandedOccurrences) {
		return fmt.Errorf("%w: maxOccurrences must be between 1 and %d", ErrInvalidPattern, maxExpandedOccurrences)
	}

	if p.Frequency == FrequencyWeekly {
		if len(p.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly patterns require at least one weekday", ErrInvalidPattern)
		}

		for _, day := range p.DaysOfWeek {
			if day < 1 || day > 7 {
				return fmt.Errorf("%w: weekday %d is out of range 1-7", ErrInvalidPattern, day)
			}
		}
	}

	return nil
}

// ExpandPattern produces the ordered candidate dates for a pattern starting
// at startDate. Dates are emitted at midnight in startDate's location; the
// caller combines them with the booking's time of day.
//
// Weeks are Monday-first: a weekly pattern emits one date per selected
// weekday within each interval-week window. Monthly patterns keep the
// day of month of startDate and skip months that do not have that day.
func ExpandPattern(startDate time.Time, pattern RecurringPattern) ([]time.Time, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}

	opt := rrule.ROption{
		Dtstart:  truncateToDay(startDate),
		Interval: pattern.Interval,
		Wkst:     rrule.MO,
	}

	switch pattern.Frequency {
	case FrequencyDaily:
		opt.Freq = rrule.DAILY
	case FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
		for _, day := range pattern.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[day])
		}
	case FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
	}

	if pattern.EndDate != nil {
		opt.Until = truncateToDay(*pattern.EndDate)
	} else {
		opt.Count = *pattern.MaxOccurrences
	}

	rule, err := rrule.NewRRule(opt)

	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	var dates []time.Time
	next := rule.Iterator()

	for len(dates) < maxExpandedOccurrences {
		date, ok := next()

		if !ok {
			break
		}

		dates = append(dates, date)
	}

	return dates, nil
}

// ApplyExclusions returns a copy of instances with Excluded set on every
// instance whose date exactly matches an entry in excludedDates, and cleared
// everywhere else. Instances are never removed, so the caller can keep
// showing them and the user can toggle an exclusion back off. Applying the
// same exclusion set twice yields the same result.
func ApplyExclusions(instances []RecurringInstance, excludedDates []time.Time) []RecurringInstance {
	result := make([]RecurringInstance, len(instances))
	copy(result, instances)

	for i := range result {
		result[i].Excluded = false

		for _, excluded := range excludedDates {
			if result[i].Date.Equal(excluded) {
				result[i].Excluded = true
				break
			}
		}
	}

	return result
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func combineDateTime(date time.Time, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, clock.Location())
}
