// Package analytics implements the store analytics aggregation engine:
// date range resolution, metric snapshots, comparison deltas, the gap-filled
// sales time series and the top products ranking.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Range is an inclusive date range.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days returns the length of the range in days, rounded up.
func (r Range) Days() int {
	hours := r.End.Sub(r.Start).Hours()
	if hours < 0 {
		hours = -hours
	}
	days := int(hours / 24)
	if hours > float64(days)*24 {
		days++
	}
	return days
}

// Snapshot is a single metrics snapshot over one date range. ConversionRate
// is the raw fraction; presentation-layer scaling happens in the response.
type Snapshot struct {
	Revenue           float64
	Orders            int64
	AverageOrderValue float64
	Sessions          int64
	ConversionRate    float64
}

// Comparison holds per-metric percentage changes against a prior range.
type Comparison struct {
	TotalRevenueChange      float64 `json:"totalRevenueChange"`
	TotalOrdersChange       float64 `json:"totalOrdersChange"`
	AverageOrderValueChange float64 `json:"averageOrderValueChange"`
	TotalSessionsChange     float64 `json:"totalSessionsChange"`
	ConversionRateChange    float64 `json:"conversionRateChange"`
}

// TimeSeriesPoint is one labeled bucket of the sales series.
type TimeSeriesPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ProductRankEntry is one entry of the top products list.
type ProductRankEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	TotalSales float64 `json:"totalSales"`
}

// StoreAnalytics is the full analytics response for a store.
type StoreAnalytics struct {
	TotalRevenue      float64            `json:"totalRevenue"`
	TotalOrders       int64              `json:"totalOrders"`
	AverageOrderValue float64            `json:"averageOrderValue"`
	TotalSessions     int64              `json:"totalSessions"`
	ConversionRate    float64            `json:"conversionRate"`
	Comparison        *Comparison        `json:"comparison"`
	SalesOverTime     []TimeSeriesPoint  `json:"salesOverTime"`
	TopProducts       []ProductRankEntry `json:"topProducts"`
}

// SessionMetricPoint is one raw session metric row. A nil conversion rate
// means the day was never measured.
type SessionMetricPoint struct {
	Date           string   `json:"date"`
	Sessions       int      `json:"sessions"`
	ConversionRate *float64 `json:"conversionRate"`
}

// BucketSum is a grouped revenue sum for one time bucket.
type BucketSum struct {
	Bucket time.Time
	Value  float64
}

// ProductSales is an aggregated per-product sales row.
type ProductSales struct {
	Title         string
	TotalQuantity int64
	TotalSales    float64
}

// SessionMetricRow is a raw session metric row from storage.
type SessionMetricRow struct {
	Date           time.Time
	Sessions       int
	ConversionRate *float64
}

// Querier is the relational query capability the engine aggregates against.
// Implementations must treat "no matching rows" as zero/empty, never as an
// error.
type Querier interface {
	// OrderTotals returns sum(total_price) and count(*) over orders processed
	// within the range.
	OrderTotals(ctx context.Context, storeID uuid.UUID, r Range) (revenue float64, orders int64, err error)

	// SessionTotals returns sum(sessions) and avg(conversion_rate) over
	// session metrics dated within the range, compared at day granularity.
	SessionTotals(ctx context.Context, storeID uuid.UUID, r Range) (sessions int64, avgConversionRate float64, err error)

	// SalesByBucket returns revenue sums truncated to the granularity,
	// grouped and ordered ascending.
	SalesByBucket(ctx context.Context, storeID uuid.UUID, r Range, g Granularity) ([]BucketSum, error)

	// TopProducts returns per-title quantity and sales sums over line items
	// joined to orders within the range, ordered by sales descending,
	// truncated to limit.
	TopProducts(ctx context.Context, storeID uuid.UUID, r Range, limit int) ([]ProductSales, error)

	// SessionMetricRows lists raw session metrics ascending by date. A nil
	// range means no date filter.
	SessionMetricRows(ctx context.Context, storeID uuid.UUID, r *Range) ([]SessionMetricRow, error)
}
