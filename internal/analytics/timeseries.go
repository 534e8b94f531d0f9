package analytics

import (
	"fmt"
	"time"
)

// Granularity is the bucket width of the sales time series.
type Granularity string

// Supported bucket granularities; values match the DATE_TRUNC field names.
const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// GranularityFor selects the bucket width from the range length, keeping the
// rendered series at a roughly constant number of points.
func GranularityFor(r Range) Granularity {
	days := r.Days()
	switch {
	case days <= 14:
		return GranularityDay
	case days <= 60:
		return GranularityWeek
	default:
		return GranularityMonth
	}
}

// AlignStart aligns a bucket start boundary down for the granularity: weeks
// align to the preceding Monday, months to the first of the month. Time of
// day is dropped in all cases.
func AlignStart(t time.Time, g Granularity) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch g {
	case GranularityWeek:
		offset := int(day.Weekday()) - 1
		if day.Weekday() == time.Sunday {
			offset = 6
		}
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	default:
		return day
	}
}

// BuildSeries walks every bucket boundary from the aligned start through the
// end of the range, matching query results by exact bucket start date and
// filling gaps with zero. The result has exactly one point per boundary,
// ascending, no duplicates.
func BuildSeries(r Range, g Granularity, sums []BucketSum) []TimeSeriesPoint {
	byDate := make(map[string]float64, len(sums))
	for _, s := range sums {
		byDate[s.Bucket.Format(dateLayout)] = s.Value
	}

	cur := AlignStart(r.Start, g)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 23, 59, 59, 0, r.End.Location())

	var series []TimeSeriesPoint
	for !cur.After(end) {
		series = append(series, TimeSeriesPoint{
			Name:  bucketLabel(cur, g),
			Value: byDate[cur.Format(dateLayout)],
		})

		switch g {
		case GranularityDay:
			cur = cur.AddDate(0, 0, 1)
		case GranularityWeek:
			cur = cur.AddDate(0, 0, 7)
		default:
			cur = cur.AddDate(0, 1, 0)
		}
	}
	return series
}

// bucketLabel renders the chart label for one bucket boundary: "5 Mar" for
// days, "1 - 7 Mar" or "28 Mar - 3 Apr" for weeks, "Mar" for months.
func bucketLabel(start time.Time, g Granularity) string {
	switch g {
	case GranularityDay:
		return fmt.Sprintf("%d %s", start.Day(), start.Format("Jan"))
	case GranularityWeek:
		end := start.AddDate(0, 0, 6)
		if start.Month() == end.Month() {
			return fmt.Sprintf("%d - %d %s", start.Day(), end.Day(), start.Format("Jan"))
		}
		return fmt.Sprintf("%d %s - %d %s", start.Day(), start.Format("Jan"), end.Day(), end.Format("Jan"))
	default:
		return start.Format("Jan")
	}
}
