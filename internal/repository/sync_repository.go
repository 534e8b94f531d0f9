package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pulse-platform/service-store-analytics/internal/models"
)

// SyncRepository handles the writes performed by the background sync worker.
type SyncRepository struct {
	db *gorm.DB
}

// NewSyncRepository creates a new SyncRepository.
func NewSyncRepository(db *gorm.DB) *SyncRepository {
	return &SyncRepository{db: db}
}

// UpsertOrder inserts or refreshes an order by (store, shopify id) and
// replaces its line items, keeping the order the exclusive owner of them.
func (r *SyncRepository) UpsertOrder(ctx context.Context, order *models.Order, lineItems []models.LineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		err := tx.Where("store_id = ? AND shopify_id = ?", order.StoreID, order.ShopifyID).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(order).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			order.ID = existing.ID
			updates := map[string]any{
				"total_price":  order.TotalPrice,
				"processed_at": order.ProcessedAt,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", existing.ID).Delete(&models.LineItem{}).Error; err != nil {
				return err
			}
		}

		for i := range lineItems {
			lineItems[i].OrderID = order.ID
		}
		if len(lineItems) == 0 {
			return nil
		}
		return tx.Create(&lineItems).Error
	})
}

// UpsertSessionMetric inserts or refreshes the session metric row for
// (store, date).
func (r *SyncRepository) UpsertSessionMetric(ctx context.Context, metric *models.SessionMetric) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"sessions", "conversion_rate", "updated_at"}),
	}).Create(metric).Error
}

// UpsertDailyMetric inserts or refreshes the daily rollup for (store, date).
func (r *SyncRepository) UpsertDailyMetric(ctx context.Context, metric *models.DailyMetric) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_revenue", "total_orders", "sessions", "conversion_rate", "average_order_value", "updated_at",
		}),
	}).Create(metric).Error
}

// UpsertProductMetric inserts or refreshes the product rollup for
// (store, date, title).
func (r *SyncRepository) UpsertProductMetric(ctx context.Context, metric *models.ProductMetric) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "date"}, {Name: "product_title"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_sales", "net_sales", "net_items_sold", "updated_at",
		}),
	}).Create(metric).Error
}

// UpsertProduct inserts or refreshes a catalog snapshot by
// (store, shopify id).
func (r *SyncRepository) UpsertProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "shopify_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "handle", "image", "status", "tags", "updated_at",
		}),
	}).Create(product).Error
}

// CreateSyncJob records the start of a background refresh.
func (r *SyncRepository) CreateSyncJob(ctx context.Context, storeID uuid.UUID) (*models.SyncJob, error) {
	job := &models.SyncJob{
		StoreID:   storeID,
		Status:    models.SyncStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// CompleteSyncJob marks a job completed with its stats payload.
func (r *SyncRepository) CompleteSyncJob(ctx context.Context, jobID uuid.UUID, stats []byte) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":       models.SyncStatusCompleted,
			"stats":        stats,
			"completed_at": &now,
		}).Error
}

// FailSyncJob marks a job failed with the failure reason.
func (r *SyncRepository) FailSyncJob(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.SyncJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":       models.SyncStatusFailed,
			"error":        errMsg,
			"completed_at": &now,
		}).Error
}
