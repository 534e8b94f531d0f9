package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulse-platform/service-store-analytics/internal/analytics"
	"github.com/pulse-platform/service-store-analytics/internal/models"
)

const dateLayout = "2006-01-02"

// AnalyticsRepository implements analytics.Querier with aggregate SQL over
// the synced read model. No matching rows always means zero/empty.
type AnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// OrderTotals returns revenue and order count over the range.
func (r *AnalyticsRepository) OrderTotals(ctx context.Context, storeID uuid.UUID, rng analytics.Range) (float64, int64, error) {
	var row struct {
		TotalRevenue float64
		TotalOrders  int64
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(total_price), 0) AS total_revenue,
			COUNT(id) AS total_orders
		FROM orders
		WHERE store_id = ?
		AND processed_at BETWEEN ? AND ?
	`, storeID, rng.Start, rng.End).Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("aggregating orders: %w", err)
	}

	return row.TotalRevenue, row.TotalOrders, nil
}

// SessionTotals returns the session sum and average conversion rate over the
// range, compared at day granularity.
func (r *AnalyticsRepository) SessionTotals(ctx context.Context, storeID uuid.UUID, rng analytics.Range) (int64, float64, error) {
	var row struct {
		TotalSessions     int64
		AvgConversionRate float64
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(sessions), 0) AS total_sessions,
			COALESCE(AVG(conversion_rate), 0) AS avg_conversion_rate
		FROM session_metrics
		WHERE store_id = ?
		AND date BETWEEN ? AND ?
	`, storeID, rng.Start.Format(dateLayout), rng.End.Format(dateLayout)).Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("aggregating session metrics: %w", err)
	}

	return row.TotalSessions, row.AvgConversionRate, nil
}

// SalesByBucket returns revenue sums truncated to the granularity, grouped
// and ordered ascending.
func (r *AnalyticsRepository) SalesByBucket(ctx context.Context, storeID uuid.UUID, rng analytics.Range, g analytics.Granularity) ([]analytics.BucketSum, error) {
	var rows []struct {
		Bucket time.Time
		Value  float64
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			DATE_TRUNC(?, processed_at) AS bucket,
			SUM(total_price) AS value
		FROM orders
		WHERE store_id = ?
		AND processed_at BETWEEN ? AND ?
		GROUP BY 1
		ORDER BY 1 ASC
	`, string(g), storeID, rng.Start, rng.End).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping sales by %s: %w", g, err)
	}

	sums := make([]analytics.BucketSum, 0, len(rows))
	for _, row := range rows {
		sums = append(sums, analytics.BucketSum{Bucket: row.Bucket, Value: row.Value})
	}
	return sums, nil
}

// TopProducts returns per-title quantity and sales sums over line items
// joined to their orders, descending by sales.
func (r *AnalyticsRepository) TopProducts(ctx context.Context, storeID uuid.UUID, rng analytics.Range, limit int) ([]analytics.ProductSales, error) {
	var rows []struct {
		Title         string
		TotalQuantity int64
		TotalSales    float64
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			li.title AS title,
			SUM(li.quantity) AS total_quantity,
			SUM(li.quantity * li.price) AS total_sales
		FROM line_items li
		INNER JOIN orders o ON o.id = li.order_id
		WHERE o.store_id = ?
		AND o.processed_at BETWEEN ? AND ?
		GROUP BY li.title
		ORDER BY total_sales DESC
		LIMIT ?
	`, storeID, rng.Start, rng.End, limit).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ranking products: %w", err)
	}

	sales := make([]analytics.ProductSales, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, analytics.ProductSales{
			Title:         row.Title,
			TotalQuantity: row.TotalQuantity,
			TotalSales:    row.TotalSales,
		})
	}
	return sales, nil
}

// SessionMetricRows lists session metrics ascending by date, filtered to the
// range when one is given.
func (r *AnalyticsRepository) SessionMetricRows(ctx context.Context, storeID uuid.UUID, rng *analytics.Range) ([]analytics.SessionMetricRow, error) {
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("date ASC")

	if rng != nil {
		query = query.Where("date BETWEEN ? AND ?", rng.Start.Format(dateLayout), rng.End.Format(dateLayout))
	}

	var metrics []models.SessionMetric
	if err := query.Find(&metrics).Error; err != nil {
		return nil, fmt.Errorf("listing session metrics: %w", err)
	}

	rows := make([]analytics.SessionMetricRow, 0, len(metrics))
	for _, m := range metrics {
		var cr *float64
		if m.ConversionRate != nil {
			v := m.ConversionRate.InexactFloat64()
			cr = &v
		}
		rows = append(rows, analytics.SessionMetricRow{
			Date:           m.Date,
			Sessions:       m.Sessions,
			ConversionRate: cr,
		})
	}
	return rows, nil
}
