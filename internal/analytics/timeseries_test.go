package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGranularityFor(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  Granularity
	}{
		{"week of data", "2026-03-01", "2026-03-08", GranularityDay},
		{"fourteen days", "2026-03-01", "2026-03-15", GranularityDay},
		{"six weeks", "2026-02-01", "2026-03-18", GranularityWeek},
		{"sixty days", "2026-01-01", "2026-03-02", GranularityWeek},
		{"five months", "2026-01-01", "2026-06-01", GranularityMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Range{Start: date(tt.start), End: date(tt.end)}
			assert.Equal(t, tt.want, GranularityFor(r))
		})
	}
}

func TestAlignStart(t *testing.T) {
	// 2026-03-11 is a Wednesday.
	wed := time.Date(2026, 3, 11, 14, 45, 0, 0, time.UTC)

	assert.Equal(t, date("2026-03-11"), AlignStart(wed, GranularityDay))
	assert.Equal(t, date("2026-03-09"), AlignStart(wed, GranularityWeek))
	assert.Equal(t, date("2026-03-01"), AlignStart(wed, GranularityMonth))

	// Sundays belong to the week that started six days earlier.
	sun := date("2026-03-15")
	assert.Equal(t, date("2026-03-09"), AlignStart(sun, GranularityWeek))

	mon := date("2026-03-09")
	assert.Equal(t, mon, AlignStart(mon, GranularityWeek))
}

func TestBuildSeries_DailyGapFill(t *testing.T) {
	r := Range{Start: date("2026-03-01"), End: date("2026-03-10")}

	sums := []BucketSum{
		{Bucket: date("2026-03-02"), Value: 120.5},
		{Bucket: date("2026-03-07"), Value: 80},
	}

	series := BuildSeries(r, GranularityDay, sums)

	assert.Len(t, series, 10)
	assert.Equal(t, "1 Mar", series[0].Name)
	assert.Equal(t, float64(0), series[0].Value)
	assert.Equal(t, "2 Mar", series[1].Name)
	assert.Equal(t, 120.5, series[1].Value)
	assert.Equal(t, "7 Mar", series[6].Name)
	assert.Equal(t, float64(80), series[6].Value)
	assert.Equal(t, "10 Mar", series[9].Name)
	assert.Equal(t, float64(0), series[9].Value)
}

func TestBuildSeries_WeeklyAlignsToMonday(t *testing.T) {
	// Range starts mid-week; the first bucket is the preceding Monday.
	r := Range{Start: date("2026-03-11"), End: date("2026-04-05")}

	sums := []BucketSum{
		{Bucket: date("2026-03-09"), Value: 300},
		{Bucket: date("2026-03-23"), Value: 150},
	}

	series := BuildSeries(r, GranularityWeek, sums)

	assert.Len(t, series, 4)
	assert.Equal(t, "9 - 15 Mar", series[0].Name)
	assert.Equal(t, float64(300), series[0].Value)
	assert.Equal(t, "16 - 22 Mar", series[1].Name)
	assert.Equal(t, float64(0), series[1].Value)
	assert.Equal(t, float64(150), series[2].Value)
	// A week spanning two months renders both month names.
	assert.Equal(t, "30 Mar - 5 Apr", series[3].Name)
}

func TestBuildSeries_Monthly(t *testing.T) {
	r := Range{Start: date("2026-01-15"), End: date("2026-04-10")}

	sums := []BucketSum{
		{Bucket: date("2026-02-01"), Value: 1000},
		{Bucket: date("2026-04-01"), Value: 400},
	}

	series := BuildSeries(r, GranularityMonth, sums)

	assert.Len(t, series, 4)
	assert.Equal(t, "Jan", series[0].Name)
	assert.Equal(t, float64(0), series[0].Value)
	assert.Equal(t, "Feb", series[1].Name)
	assert.Equal(t, float64(1000), series[1].Value)
	assert.Equal(t, "Mar", series[2].Name)
	assert.Equal(t, "Apr", series[3].Name)
	assert.Equal(t, float64(400), series[3].Value)
}

func TestBuildSeries_NoData(t *testing.T) {
	r := Range{Start: date("2026-03-01"), End: date("2026-03-03")}

	series := BuildSeries(r, GranularityDay, nil)

	assert.Len(t, series, 3)
	for _, p := range series {
		assert.Equal(t, float64(0), p.Value)
	}
}
