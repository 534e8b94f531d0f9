// Package repository contains the gorm-backed data access layer.
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulse-platform/service-store-analytics/internal/models"
)

// StoreRepository handles Store persistence.
type StoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new StoreRepository.
func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// Create persists a new store.
func (r *StoreRepository) Create(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// GetByID fetches a store by primary key.
func (r *StoreRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// List returns all stores, newest first.
func (r *StoreRepository) List(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// Update persists changed fields of a store.
func (r *StoreRepository) Update(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}

// Delete removes a store and, via FK cascade, its synced data.
func (r *StoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Store{}, "id = ?", id).Error
}
