// Package models defines the persisted entities of the store analytics service.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store is a connected Shopify store. The access token is encrypted at rest.
type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	URL         string    `gorm:"not null;uniqueIndex" json:"url"`
	AccessToken string    `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key.
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Order is a Shopify order synced via the Admin REST API.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_store_shopify_order" json:"store_id"`
	ShopifyID   string          `gorm:"not null;uniqueIndex:idx_store_shopify_order" json:"shopify_id"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_price"`
	ProcessedAt time.Time       `gorm:"not null;index" json:"processed_at"`
	LineItems   []LineItem      `gorm:"constraint:OnDelete:CASCADE" json:"line_items,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// LineItem is one product line within an order. An order exclusively owns its
// line items; deleting the order deletes them.
type LineItem struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Title    string          `gorm:"not null" json:"title"`
	Quantity int             `gorm:"not null;default:0" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
}

// BeforeCreate assigns a UUID primary key.
func (l *LineItem) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// SessionMetric holds one row per store per day of session counts and the
// measured conversion rate. A nil conversion rate means "unmeasured".
type SessionMetric struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_store_session_date" json:"store_id"`
	Date           time.Time        `gorm:"type:date;not null;uniqueIndex:idx_store_session_date" json:"date"`
	Sessions       int              `gorm:"not null;default:0" json:"sessions"`
	ConversionRate *decimal.Decimal `gorm:"type:decimal(10,4)" json:"conversion_rate"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key.
func (m *SessionMetric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DailyMetric is a per-day rollup written by the sync worker from ShopifyQL
// daily analytics rows.
type DailyMetric struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_store_daily_date" json:"store_id"`
	Date              time.Time       `gorm:"type:date;not null;uniqueIndex:idx_store_daily_date" json:"date"`
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_revenue"`
	TotalOrders       int             `gorm:"not null;default:0" json:"total_orders"`
	Sessions          int             `gorm:"not null;default:0" json:"sessions"`
	ConversionRate    decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"conversion_rate"`
	AverageOrderValue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"average_order_value"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key.
func (m *DailyMetric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ProductMetric is a per-day per-product sales rollup from ShopifyQL.
type ProductMetric struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_store_product_date" json:"store_id"`
	Date         time.Time       `gorm:"type:date;not null;uniqueIndex:idx_store_product_date" json:"date"`
	ProductTitle string          `gorm:"not null;uniqueIndex:idx_store_product_date" json:"product_title"`
	TotalSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_sales"`
	NetSales     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"net_sales"`
	NetItemsSold int             `gorm:"not null;default:0" json:"net_items_sold"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key.
func (m *ProductMetric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Product is a catalog snapshot from the Admin REST API.
type Product struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_store_shopify_product" json:"store_id"`
	ShopifyID string         `gorm:"not null;uniqueIndex:idx_store_shopify_product" json:"shopify_id"`
	Title     string         `gorm:"not null" json:"title"`
	Handle    string         `json:"handle"`
	Image     string         `json:"image"`
	Status    string         `json:"status"`
	Tags      datatypes.JSON `json:"tags,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Sync job statuses.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// SyncJob records one background refresh of a store's raw data.
type SyncJob struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"store_id"`
	Status      string         `gorm:"not null;default:'running'" json:"status"`
	Stats       datatypes.JSON `json:"stats,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// BeforeCreate assigns a UUID primary key.
func (j *SyncJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// All returns every model for migration.
func All() []any {
	return []any{
		&Store{},
		&Order{},
		&LineItem{},
		&SessionMetric{},
		&DailyMetric{},
		&ProductMetric{},
		&Product{},
		&SyncJob{},
	}
}
