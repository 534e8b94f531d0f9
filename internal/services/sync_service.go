package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/pulse-platform/service-store-analytics/internal/events"
	"github.com/pulse-platform/service-store-analytics/internal/models"
	"github.com/pulse-platform/service-store-analytics/internal/providers/shopify"
	"github.com/pulse-platform/service-store-analytics/internal/repository"
)

const (
	dateLayout  = "2006-01-02"
	syncLockTTL = 15 * time.Minute
	syncTimeout = 10 * time.Minute
)

// SyncServiceConfig holds configuration for the sync service.
type SyncServiceConfig struct {
	APIVersion   string
	Workers      int
	QueueSize    int
	LookbackDays int
}

// syncStats summarizes one refresh for the job record and the completed
// event.
type syncStats struct {
	Orders       int `json:"orders"`
	DailyMetrics int `json:"daily_metrics"`
	ProductRows  int `json:"product_rows"`
	Products     int `json:"products"`
}

// SyncService refreshes a store's raw analytics data in the background. The
// trigger returns immediately; the refresh runs on a worker pool and its
// failures surface only through logs, the sync_jobs table and NATS events.
type SyncService struct {
	storeService *StoreService
	syncRepo     *repository.SyncRepository
	redis        *redis.Client
	publisher    *events.Publisher
	logger       *zap.Logger
	cfg          SyncServiceConfig

	jobs chan uuid.UUID
	wg   sync.WaitGroup
}

// NewSyncService creates a new SyncService. The redis client and publisher
// are optional; without redis, concurrent triggers for the same store are
// not deduplicated.
func NewSyncService(
	storeService *StoreService,
	syncRepo *repository.SyncRepository,
	redisClient *redis.Client,
	publisher *events.Publisher,
	cfg *SyncServiceConfig,
	logger *zap.Logger,
) *SyncService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 16
	}
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 90
	}

	return &SyncService{
		storeService: storeService,
		syncRepo:     syncRepo,
		redis:        redisClient,
		publisher:    publisher,
		logger:       logger,
		cfg: SyncServiceConfig{
			APIVersion:   cfg.APIVersion,
			Workers:      workers,
			QueueSize:    queueSize,
			LookbackDays: lookback,
		},
		jobs: make(chan uuid.UUID, queueSize),
	}
}

// Start launches the worker pool.
func (s *SyncService) Start() {
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for storeID := range s.jobs {
				s.runSync(storeID)
			}
		}()
	}
	s.logger.Info("Sync workers started", zap.Int("workers", s.cfg.Workers))
}

// Stop drains the queue and waits for in-flight syncs to finish.
func (s *SyncService) Stop() {
	close(s.jobs)
	s.wg.Wait()
	s.logger.Info("Sync workers stopped")
}

// TriggerSync enqueues a background refresh for the store and returns
// immediately. A redis lock dedupes concurrent triggers per store.
func (s *SyncService) TriggerSync(ctx context.Context, storeID uuid.UUID) error {
	if _, err := s.storeService.GetStore(ctx, storeID); err != nil {
		return err
	}

	if !s.acquireLock(ctx, storeID) {
		return ErrSyncInProgress
	}

	select {
	case s.jobs <- storeID:
		return nil
	default:
		s.releaseLock(context.Background(), storeID)
		return ErrSyncQueueFull
	}
}

// runSync performs one full refresh. It never returns an error: failures are
// logged, recorded on the job and published, nothing more.
func (s *SyncService) runSync(storeID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	defer s.releaseLock(ctx, storeID)

	started := time.Now()

	job, err := s.syncRepo.CreateSyncJob(ctx, storeID)
	if err != nil {
		s.logger.Error("failed to record sync job", zap.String("store_id", storeID.String()), zap.Error(err))
		return
	}

	stats, err := s.syncStore(ctx, storeID)
	if err != nil {
		s.logger.Error("store sync failed",
			zap.String("store_id", storeID.String()),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		if dbErr := s.syncRepo.FailSyncJob(ctx, job.ID, err.Error()); dbErr != nil {
			s.logger.Error("failed to mark sync job failed", zap.Error(dbErr))
		}
		if s.publisher != nil {
			_ = s.publisher.PublishSyncFailed(&events.SyncFailedEvent{
				StoreID:   storeID,
				JobID:     job.ID,
				Error:     err.Error(),
				Timestamp: time.Now().UTC(),
			})
		}
		return
	}

	payload, _ := json.Marshal(stats)
	if err := s.syncRepo.CompleteSyncJob(ctx, job.ID, payload); err != nil {
		s.logger.Error("failed to mark sync job completed", zap.Error(err))
	}

	if s.publisher != nil {
		_ = s.publisher.PublishSyncCompleted(&events.SyncCompletedEvent{
			StoreID:      storeID,
			JobID:        job.ID,
			Orders:       stats.Orders,
			DailyMetrics: stats.DailyMetrics,
			ProductRows:  stats.ProductRows,
			Products:     stats.Products,
			Duration:     time.Since(started).String(),
			Timestamp:    time.Now().UTC(),
		})
	}

	s.logger.Info("store sync completed",
		zap.String("store_id", storeID.String()),
		zap.Int("orders", stats.Orders),
		zap.Int("daily_metrics", stats.DailyMetrics),
		zap.Int("product_rows", stats.ProductRows),
		zap.Duration("duration", time.Since(started)),
	)
}

// syncStore pulls ShopifyQL metrics and REST orders/products for one store
// and upserts them into the read model.
func (s *SyncService) syncStore(ctx context.Context, storeID uuid.UUID) (*syncStats, error) {
	store, err := s.storeService.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	token, err := s.storeService.AccessToken(store)
	if err != nil {
		return nil, err
	}

	client, err := shopify.NewClient(&shopify.ClientConfig{
		StoreURL:    store.URL,
		AccessToken: token,
		APIVersion:  s.cfg.APIVersion,
		Logger:      s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("building shopify client: %w", err)
	}

	until := time.Now().UTC()
	since := until.AddDate(0, 0, -s.cfg.LookbackDays)

	stats := &syncStats{}

	dailyRows, err := client.GetDailyAnalytics(ctx, since.Format(dateLayout), until.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("fetching daily analytics: %w", err)
	}
	for _, row := range dailyRows {
		if err := s.upsertDailyRow(ctx, storeID, row); err != nil {
			return nil, err
		}
	}
	stats.DailyMetrics = len(dailyRows)

	productRows, err := client.GetProductAnalytics(ctx, since.Format(dateLayout), until.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("fetching product analytics: %w", err)
	}
	for _, row := range productRows {
		if err := s.upsertProductRow(ctx, storeID, row); err != nil {
			return nil, err
		}
	}
	stats.ProductRows = len(productRows)

	orders, err := client.GetOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching orders: %w", err)
	}
	for _, o := range orders {
		if err := s.upsertOrder(ctx, storeID, o); err != nil {
			return nil, err
		}
	}
	stats.Orders = len(orders)

	products, err := client.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	for _, p := range products {
		record := &models.Product{
			StoreID:   storeID,
			ShopifyID: p.ShopifyID,
			Title:     p.Title,
			Handle:    p.Handle,
			Image:     p.Image,
			Status:    p.Status,
		}
		if len(p.Tags) > 0 {
			if tags, err := json.Marshal(p.Tags); err == nil {
				record.Tags = datatypes.JSON(tags)
			}
		}
		if err := s.syncRepo.UpsertProduct(ctx, record); err != nil {
			return nil, fmt.Errorf("upserting product %q: %w", p.Title, err)
		}
	}
	stats.Products = len(products)

	return stats, nil
}

func (s *SyncService) upsertDailyRow(ctx context.Context, storeID uuid.UUID, row shopify.DailyAnalyticsRow) error {
	date, err := time.Parse(dateLayout, row.Date)
	if err != nil {
		s.logger.Warn("skipping daily row with unparseable date",
			zap.String("store_id", storeID.String()),
			zap.String("date", row.Date),
		)
		return nil
	}

	cr := decimal.NewFromFloat(row.ConversionRate)
	metric := &models.SessionMetric{
		StoreID:        storeID,
		Date:           date,
		Sessions:       row.Sessions,
		ConversionRate: &cr,
	}
	if err := s.syncRepo.UpsertSessionMetric(ctx, metric); err != nil {
		return fmt.Errorf("upserting session metric for %s: %w", row.Date, err)
	}

	daily := &models.DailyMetric{
		StoreID:           storeID,
		Date:              date,
		TotalRevenue:      decimal.NewFromFloat(row.TotalSales),
		TotalOrders:       row.Orders,
		Sessions:          row.Sessions,
		ConversionRate:    cr,
		AverageOrderValue: decimal.NewFromFloat(row.AverageOrderValue),
	}
	if err := s.syncRepo.UpsertDailyMetric(ctx, daily); err != nil {
		return fmt.Errorf("upserting daily metric for %s: %w", row.Date, err)
	}
	return nil
}

func (s *SyncService) upsertProductRow(ctx context.Context, storeID uuid.UUID, row shopify.ProductAnalyticsRow) error {
	date, err := time.Parse(dateLayout, row.Date)
	if err != nil {
		s.logger.Warn("skipping product row with unparseable date",
			zap.String("store_id", storeID.String()),
			zap.String("date", row.Date),
		)
		return nil
	}

	metric := &models.ProductMetric{
		StoreID:      storeID,
		Date:         date,
		ProductTitle: row.ProductTitle,
		TotalSales:   decimal.NewFromFloat(row.TotalSales),
		NetSales:     decimal.NewFromFloat(row.NetSales),
		NetItemsSold: row.NetItemsSold,
	}
	if err := s.syncRepo.UpsertProductMetric(ctx, metric); err != nil {
		return fmt.Errorf("upserting product metric for %q on %s: %w", row.ProductTitle, row.Date, err)
	}
	return nil
}

func (s *SyncService) upsertOrder(ctx context.Context, storeID uuid.UUID, o shopify.Order) error {
	order := &models.Order{
		StoreID:     storeID,
		ShopifyID:   o.ShopifyID,
		TotalPrice:  o.TotalPrice,
		ProcessedAt: o.ProcessedAt,
	}

	lineItems := make([]models.LineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		lineItems = append(lineItems, models.LineItem{
			Title:    li.Title,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}

	if err := s.syncRepo.UpsertOrder(ctx, order, lineItems); err != nil {
		return fmt.Errorf("upserting order %s: %w", o.ShopifyID, err)
	}
	return nil
}

func (s *SyncService) syncLockKey(storeID uuid.UUID) string {
	return fmt.Sprintf("analytics:sync:lock:%s", storeID)
}

// acquireLock takes the per-store sync lock. Without redis it always
// succeeds.
func (s *SyncService) acquireLock(ctx context.Context, storeID uuid.UUID) bool {
	if s.redis == nil {
		return true
	}
	ok, err := s.redis.SetNX(ctx, s.syncLockKey(storeID), time.Now().UTC().Format(time.RFC3339), syncLockTTL).Result()
	if err != nil {
		s.logger.Warn("failed to acquire sync lock, proceeding without it", zap.Error(err))
		return true
	}
	return ok
}

func (s *SyncService) releaseLock(ctx context.Context, storeID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.syncLockKey(storeID)).Err(); err != nil {
		s.logger.Warn("failed to release sync lock", zap.Error(err))
	}
}
