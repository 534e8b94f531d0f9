// Package services contains the application services composing repositories,
// providers and events.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pulse-platform/service-store-analytics/internal/models"
	"github.com/pulse-platform/service-store-analytics/internal/repository"
	"github.com/pulse-platform/service-store-analytics/internal/utils"
)

// Service-level sentinel errors.
var (
	ErrStoreNotFound  = errors.New("store not found")
	ErrSyncInProgress = errors.New("sync already in progress for this store")
	ErrSyncQueueFull  = errors.New("sync queue is full")
)

// StoreService manages connected stores. Access tokens are encrypted before
// they reach the database when an encryption key is configured.
type StoreService struct {
	storeRepo *repository.StoreRepository
	encryptor *utils.Encryptor
	logger    *zap.Logger
}

// NewStoreService creates a new StoreService.
func NewStoreService(storeRepo *repository.StoreRepository, encryptionKey string, logger *zap.Logger) (*StoreService, error) {
	var encryptor *utils.Encryptor
	if encryptionKey != "" {
		var err error
		encryptor, err = utils.NewEncryptor(encryptionKey)
		if err != nil {
			logger.Warn("Failed to initialize encryptor, tokens stored in plain text", zap.Error(err))
		}
	}

	return &StoreService{
		storeRepo: storeRepo,
		encryptor: encryptor,
		logger:    logger,
	}, nil
}

// CreateStore registers a new store connection.
func (s *StoreService) CreateStore(ctx context.Context, name, url, accessToken string) (*models.Store, error) {
	token := accessToken
	if s.encryptor != nil {
		var err error
		token, err = s.encryptor.Encrypt(accessToken)
		if err != nil {
			return nil, fmt.Errorf("encrypting access token: %w", err)
		}
	}

	store := &models.Store{
		Name:        name,
		URL:         url,
		AccessToken: token,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	s.logger.Info("Store connected", zap.String("store_id", store.ID.String()), zap.String("url", url))
	return store, nil
}

// ListStores returns all connected stores.
func (s *StoreService) ListStores(ctx context.Context) ([]models.Store, error) {
	return s.storeRepo.List(ctx)
}

// GetStore fetches one store.
func (s *StoreService) GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// StoreUpdate holds the mutable store fields.
type StoreUpdate struct {
	Name        *string
	AccessToken *string
}

// UpdateStore applies the given updates to a store.
func (s *StoreService) UpdateStore(ctx context.Context, id uuid.UUID, update StoreUpdate) (*models.Store, error) {
	store, err := s.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		store.Name = *update.Name
	}
	if update.AccessToken != nil {
		token := *update.AccessToken
		if s.encryptor != nil {
			token, err = s.encryptor.Encrypt(token)
			if err != nil {
				return nil, fmt.Errorf("encrypting access token: %w", err)
			}
		}
		store.AccessToken = token
	}

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("updating store: %w", err)
	}
	return store, nil
}

// DeleteStore disconnects a store.
func (s *StoreService) DeleteStore(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetStore(ctx, id); err != nil {
		return err
	}
	return s.storeRepo.Delete(ctx, id)
}

// AccessToken returns the decrypted access token for a store.
func (s *StoreService) AccessToken(store *models.Store) (string, error) {
	if s.encryptor == nil {
		return store.AccessToken, nil
	}
	token, err := s.encryptor.Decrypt(store.AccessToken)
	if err != nil {
		return "", fmt.Errorf("decrypting access token for store %s: %w", store.ID, err)
	}
	return token, nil
}
