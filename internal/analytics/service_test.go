package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeQuerier returns canned aggregates keyed by range start date, so the
// primary and comparison snapshots can differ within one test.
type fakeQuerier struct {
	revenue  map[string]float64
	orders   map[string]int64
	sessions map[string]int64
	avgCR    map[string]float64
	sums     []BucketSum
	products []ProductSales
	rows     []SessionMetricRow
	err      error

	lastRowsFilter *Range
}

func (f *fakeQuerier) OrderTotals(_ context.Context, _ uuid.UUID, r Range) (float64, int64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	key := r.Start.Format(dateLayout)
	return f.revenue[key], f.orders[key], nil
}

func (f *fakeQuerier) SessionTotals(_ context.Context, _ uuid.UUID, r Range) (int64, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	key := r.Start.Format(dateLayout)
	return f.sessions[key], f.avgCR[key], nil
}

func (f *fakeQuerier) SalesByBucket(_ context.Context, _ uuid.UUID, _ Range, _ Granularity) ([]BucketSum, error) {
	return f.sums, f.err
}

func (f *fakeQuerier) TopProducts(_ context.Context, _ uuid.UUID, _ Range, limit int) ([]ProductSales, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.products) > limit {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func (f *fakeQuerier) SessionMetricRows(_ context.Context, _ uuid.UUID, r *Range) ([]SessionMetricRow, error) {
	f.lastRowsFilter = r
	return f.rows, f.err
}

func newTestService(q Querier) *Service {
	svc := NewService(q, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestGetStoreAnalytics(t *testing.T) {
	q := &fakeQuerier{
		revenue:  map[string]float64{"2026-03-01": 1000.456},
		orders:   map[string]int64{"2026-03-01": 3},
		sessions: map[string]int64{"2026-03-01": 500},
		avgCR:    map[string]float64{"2026-03-01": 0.0234},
		sums: []BucketSum{
			{Bucket: date("2026-03-02"), Value: 600},
			{Bucket: date("2026-03-05"), Value: 400.456},
		},
		products: []ProductSales{
			{Title: "Linen Shirt", TotalQuantity: 12, TotalSales: 600},
			{Title: "Canvas Tote", TotalQuantity: 8, TotalSales: 400},
		},
	}

	svc := newTestService(q)

	result, err := svc.GetStoreAnalytics(context.Background(), uuid.New(), QueryParams{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-10",
	})
	require.NoError(t, err)

	assert.InDelta(t, 1000.456, result.TotalRevenue, 1e-9)
	assert.Equal(t, int64(3), result.TotalOrders)
	// 1000.456 / 3 = 333.485..., rounded to two decimals.
	assert.InDelta(t, 333.49, result.AverageOrderValue, 1e-9)
	assert.Equal(t, int64(500), result.TotalSessions)
	// Conversion rate is stored as a fraction and reported as a percentage.
	assert.InDelta(t, 2.34, result.ConversionRate, 1e-9)
	assert.Nil(t, result.Comparison)

	require.Len(t, result.SalesOverTime, 10)
	assert.Equal(t, float64(600), result.SalesOverTime[1].Value)

	require.Len(t, result.TopProducts, 2)
	assert.Equal(t, "Linen Shirt", result.TopProducts[0].ID)
	assert.Equal(t, "Linen Shirt", result.TopProducts[0].Title)
	assert.Equal(t, float64(600), result.TopProducts[0].TotalSales)
}

func TestGetStoreAnalytics_ZeroOrders(t *testing.T) {
	q := &fakeQuerier{
		revenue: map[string]float64{"2026-03-01": 250}, // refunds can leave revenue without orders
		orders:  map[string]int64{"2026-03-01": 0},
	}

	svc := newTestService(q)

	result, err := svc.GetStoreAnalytics(context.Background(), uuid.New(), QueryParams{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-10",
	})
	require.NoError(t, err)

	assert.Equal(t, float64(0), result.AverageOrderValue)
}

func TestGetStoreAnalytics_WithComparison(t *testing.T) {
	q := &fakeQuerier{
		revenue:  map[string]float64{"2026-03-10": 200, "2026-02-27": 100},
		orders:   map[string]int64{"2026-03-10": 4, "2026-02-27": 2},
		sessions: map[string]int64{"2026-03-10": 300, "2026-02-27": 300},
		avgCR:    map[string]float64{"2026-03-10": 0.02, "2026-02-27": 0.04},
	}

	svc := newTestService(q)

	result, err := svc.GetStoreAnalytics(context.Background(), uuid.New(), QueryParams{
		StartDate:        "2026-03-10",
		EndDate:          "2026-03-20",
		ComparisonPeriod: ComparisonPreviousPeriod,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Comparison)

	assert.InDelta(t, 100, result.Comparison.TotalRevenueChange, 1e-9)
	assert.InDelta(t, 100, result.Comparison.TotalOrdersChange, 1e-9)
	assert.InDelta(t, 0, result.Comparison.AverageOrderValueChange, 1e-9)
	assert.InDelta(t, 0, result.Comparison.TotalSessionsChange, 1e-9)
	assert.InDelta(t, -50, result.Comparison.ConversionRateChange, 1e-9)
}

func TestGetStoreAnalytics_InvalidDate(t *testing.T) {
	svc := newTestService(&fakeQuerier{})

	_, err := svc.GetStoreAnalytics(context.Background(), uuid.New(), QueryParams{
		StartDate: "yesterday",
	})
	assert.Error(t, err)
}

func TestGetStoreAnalytics_QueryFailure(t *testing.T) {
	q := &fakeQuerier{err: errors.New("connection reset")}
	svc := newTestService(q)

	_, err := svc.GetStoreAnalytics(context.Background(), uuid.New(), QueryParams{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-10",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetSessionMetrics(t *testing.T) {
	cr := 1.8
	q := &fakeQuerier{
		rows: []SessionMetricRow{
			{Date: date("2026-03-01"), Sessions: 120, ConversionRate: &cr},
			{Date: date("2026-03-02"), Sessions: 95, ConversionRate: nil},
		},
	}

	svc := newTestService(q)

	points, err := svc.GetSessionMetrics(context.Background(), uuid.New(), "", "")
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Nil(t, q.lastRowsFilter)
	assert.Equal(t, "2026-03-01", points[0].Date)
	assert.Equal(t, 120, points[0].Sessions)
	require.NotNil(t, points[0].ConversionRate)
	assert.InDelta(t, 1.8, *points[0].ConversionRate, 1e-9)
	assert.Nil(t, points[1].ConversionRate)
}

func TestGetSessionMetrics_DateFilter(t *testing.T) {
	q := &fakeQuerier{}
	svc := newTestService(q)

	_, err := svc.GetSessionMetrics(context.Background(), uuid.New(), "2026-03-01", "2026-03-10")
	require.NoError(t, err)
	require.NotNil(t, q.lastRowsFilter)
	assert.Equal(t, date("2026-03-01"), q.lastRowsFilter.Start)
	assert.Equal(t, date("2026-03-10"), q.lastRowsFilter.End)

	// A single bound is not enough to filter.
	q.lastRowsFilter = nil
	_, err = svc.GetSessionMetrics(context.Background(), uuid.New(), "2026-03-01", "")
	require.NoError(t, err)
	assert.Nil(t, q.lastRowsFilter)
}
