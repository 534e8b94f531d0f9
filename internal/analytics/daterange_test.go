package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolveRanges_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	primary, comparison, err := ResolveRanges("", "", "", now)
	require.NoError(t, err)

	assert.Equal(t, now.AddDate(0, 0, -30), primary.Start)
	assert.Equal(t, now, primary.End)
	assert.Nil(t, comparison)
}

func TestResolveRanges_ExplicitDates(t *testing.T) {
	primary, comparison, err := ResolveRanges("2026-03-01", "2026-03-10", "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, date("2026-03-01"), primary.Start)
	assert.Equal(t, date("2026-03-10"), primary.End)
	assert.Nil(t, comparison)
}

func TestResolveRanges_InvalidDates(t *testing.T) {
	_, _, err := ResolveRanges("03/01/2026", "", "", time.Now())
	assert.Error(t, err)

	_, _, err = ResolveRanges("", "not-a-date", "", time.Now())
	assert.Error(t, err)
}

func TestResolveRanges_PreviousPeriod(t *testing.T) {
	primary, comparison, err := ResolveRanges("2026-03-10", "2026-03-19", ComparisonPreviousPeriod, time.Now())
	require.NoError(t, err)
	require.NotNil(t, comparison)

	// Nine-day span shifted back by the span plus one day: the comparison
	// window ends the day before the primary window starts.
	assert.Equal(t, date("2026-02-28"), comparison.Start)
	assert.Equal(t, date("2026-03-09"), comparison.End)
	assert.Equal(t, primary.Days(), comparison.Days())
}

func TestResolveRanges_PreviousPeriodAcrossFebruary(t *testing.T) {
	// 2024 is a leap year: Feb 29 exists.
	_, comparison, err := ResolveRanges("2024-03-01", "2024-03-10", ComparisonPreviousPeriod, time.Now())
	require.NoError(t, err)
	require.NotNil(t, comparison)

	assert.Equal(t, date("2024-02-20"), comparison.Start)
	assert.Equal(t, date("2024-02-29"), comparison.End)
}

func TestResolveRanges_LastMonth(t *testing.T) {
	_, comparison, err := ResolveRanges("2026-03-05", "2026-03-15", ComparisonLastMonth, time.Now())
	require.NoError(t, err)
	require.NotNil(t, comparison)

	assert.Equal(t, date("2026-02-05"), comparison.Start)
	assert.Equal(t, date("2026-02-15"), comparison.End)
}

func TestResolveRanges_LastMonthRollover(t *testing.T) {
	// Mar 31 minus one month lands in March again because February has no
	// 31st; the arithmetic rolls over rather than clamping.
	_, comparison, err := ResolveRanges("2026-03-31", "2026-03-31", ComparisonLastMonth, time.Now())
	require.NoError(t, err)
	require.NotNil(t, comparison)

	assert.Equal(t, date("2026-03-03"), comparison.Start)
}

func TestResolveRanges_LastYear(t *testing.T) {
	_, comparison, err := ResolveRanges("2026-03-05", "2026-03-15", ComparisonLastYear, time.Now())
	require.NoError(t, err)
	require.NotNil(t, comparison)

	assert.Equal(t, date("2025-03-05"), comparison.Start)
	assert.Equal(t, date("2025-03-15"), comparison.End)
}

func TestResolveRanges_UnknownComparisonMode(t *testing.T) {
	_, comparison, err := ResolveRanges("2026-03-01", "2026-03-10", "fortnight", time.Now())
	require.NoError(t, err)
	assert.Nil(t, comparison)
}

func TestRangeDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"same day", "2026-03-01", "2026-03-01", 0},
		{"ten days", "2026-03-01", "2026-03-11", 10},
		{"across month", "2026-02-20", "2026-03-05", 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Range{Start: date(tt.start), End: date(tt.end)}
			assert.Equal(t, tt.want, r.Days())
		})
	}
}
