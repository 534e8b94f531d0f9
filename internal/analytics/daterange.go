package analytics

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Comparison period modes.
const (
	ComparisonPreviousPeriod = "previous_period"
	ComparisonLastMonth      = "last_month"
	ComparisonLastYear       = "last_year"
)

// defaultRangeDays is the primary range length when no start date is given.
const defaultRangeDays = 30

// ResolveRanges turns optional ISO date strings and a comparison mode into a
// concrete primary range and an optional comparison range. Unknown or absent
// comparison modes yield a nil comparison range.
func ResolveRanges(startDate, endDate, comparisonPeriod string, now time.Time) (Range, *Range, error) {
	var primary Range
	var err error

	if startDate == "" {
		primary.Start = now.AddDate(0, 0, -defaultRangeDays)
	} else {
		primary.Start, err = time.Parse(dateLayout, startDate)
		if err != nil {
			return Range{}, nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
	}

	if endDate == "" {
		primary.End = now
	} else {
		primary.End, err = time.Parse(dateLayout, endDate)
		if err != nil {
			return Range{}, nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
	}

	return primary, comparisonRange(primary, comparisonPeriod), nil
}

// comparisonRange derives the comparison range for the given mode.
func comparisonRange(primary Range, mode string) *Range {
	switch mode {
	case ComparisonPreviousPeriod:
		// Shift back by the full duration plus one day so the comparison
		// window never touches the primary window.
		duration := primary.End.Sub(primary.Start)
		return &Range{
			Start: primary.Start.Add(-duration - 24*time.Hour),
			End:   primary.Start.Add(-24 * time.Hour),
		}
	case ComparisonLastMonth:
		// Calendar month subtraction. When the start day does not exist in
		// the target month the arithmetic rolls over to the next month
		// (Mar 31 - 1 month = Mar 3); carried over as-is from the observed
		// behavior of the dashboard.
		return &Range{
			Start: primary.Start.AddDate(0, -1, 0),
			End:   primary.End.AddDate(0, -1, 0),
		}
	case ComparisonLastYear:
		return &Range{
			Start: primary.Start.AddDate(-1, 0, 0),
			End:   primary.End.AddDate(-1, 0, 0),
		}
	default:
		return nil
	}
}
