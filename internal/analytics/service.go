package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QueryParams are the raw request parameters for a store analytics query.
type QueryParams struct {
	StartDate        string
	EndDate          string
	ComparisonPeriod string
}

// Service orchestrates the aggregation components into the two public
// analytics operations. It holds no mutable state; every request recomputes
// from the underlying data.
type Service struct {
	querier Querier
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new analytics service.
func NewService(querier Querier, logger *zap.Logger) *Service {
	return &Service{
		querier: querier,
		logger:  logger,
		now:     time.Now,
	}
}

// GetStoreAnalytics computes the full analytics block for a store: totals,
// optional comparison deltas, the gap-filled sales series and the top
// products list. The four underlying aggregate queries are independent and
// run concurrently.
func (s *Service) GetStoreAnalytics(ctx context.Context, storeID uuid.UUID, params QueryParams) (*StoreAnalytics, error) {
	primary, comparison, err := ResolveRanges(params.StartDate, params.EndDate, params.ComparisonPeriod, s.now())
	if err != nil {
		return nil, err
	}

	granularity := GranularityFor(primary)

	var (
		current  Snapshot
		previous Snapshot
		sums     []BucketSum
		products []ProductRankEntry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		current, err = buildSnapshot(gctx, s.querier, storeID, primary)
		return err
	})

	if comparison != nil {
		compRange := *comparison
		g.Go(func() error {
			var err error
			previous, err = buildSnapshot(gctx, s.querier, storeID, compRange)
			return err
		})
	}

	g.Go(func() error {
		var err error
		sums, err = s.querier.SalesByBucket(gctx, storeID, primary, granularity)
		if err != nil {
			return fmt.Errorf("sales series for store %s: %w", storeID, err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		products, err = rankTopProducts(gctx, s.querier, storeID, primary)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &StoreAnalytics{
		TotalRevenue:      current.Revenue,
		TotalOrders:       current.Orders,
		AverageOrderValue: round2(current.AverageOrderValue),
		TotalSessions:     current.Sessions,
		ConversionRate:    round2(current.ConversionRate * 100),
		SalesOverTime:     BuildSeries(primary, granularity, sums),
		TopProducts:       products,
	}

	if comparison != nil {
		result.Comparison = compare(current, previous)
	}

	s.logger.Debug("computed store analytics",
		zap.String("store_id", storeID.String()),
		zap.String("granularity", string(granularity)),
		zap.Int("series_points", len(result.SalesOverTime)),
		zap.Bool("comparison", result.Comparison != nil),
	)

	return result, nil
}

// GetSessionMetrics returns the raw session metric rows for a store, oldest
// first. The date filter applies only when both bounds are given.
func (s *Service) GetSessionMetrics(ctx context.Context, storeID uuid.UUID, startDate, endDate string) ([]SessionMetricPoint, error) {
	var filter *Range
	if startDate != "" && endDate != "" {
		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
		filter = &Range{Start: start, End: end}
	}

	rows, err := s.querier.SessionMetricRows(ctx, storeID, filter)
	if err != nil {
		return nil, fmt.Errorf("session metrics for store %s: %w", storeID, err)
	}

	points := make([]SessionMetricPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, SessionMetricPoint{
			Date:           row.Date.Format(dateLayout),
			Sessions:       row.Sessions,
			ConversionRate: row.ConversionRate,
		})
	}
	return points, nil
}

// round2 rounds to two decimal places for presentation.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
