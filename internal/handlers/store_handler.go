package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulse-platform/service-store-analytics/internal/services"
)

// StoreHandler handles store management endpoints.
type StoreHandler struct {
	storeService *services.StoreService
	syncService  *services.SyncService
	logger       *zap.Logger
}

// NewStoreHandler creates a new store handler.
func NewStoreHandler(storeService *services.StoreService, syncService *services.SyncService, logger *zap.Logger) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
		syncService:  syncService,
		logger:       logger,
	}
}

// CreateStoreRequest is the payload for connecting a store.
type CreateStoreRequest struct {
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url" binding:"required"`
	AccessToken string `json:"accessToken" binding:"required"`
}

// CreateStore connects a new store
// @Summary Connect a store
// @Tags Stores
// @Router /stores [post]
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, err := h.storeService.CreateStore(c.Request.Context(), req.Name, req.URL, req.AccessToken)
	if err != nil {
		h.logger.Error("failed to create store", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}

	c.JSON(http.StatusCreated, store)
}

// ListStores returns all connected stores
// @Summary List stores
// @Tags Stores
// @Router /stores [get]
func (h *StoreHandler) ListStores(c *gin.Context) {
	stores, err := h.storeService.ListStores(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list stores", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list stores"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

// GetStore returns one store
// @Summary Get store
// @Tags Stores
// @Param id path string true "Store ID"
// @Router /stores/{id} [get]
func (h *StoreHandler) GetStore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	store, err := h.storeService.GetStore(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	c.JSON(http.StatusOK, store)
}

// UpdateStoreRequest is the payload for updating a store.
type UpdateStoreRequest struct {
	Name        *string `json:"name"`
	AccessToken *string `json:"accessToken"`
}

// UpdateStore updates a store's mutable fields
// @Summary Update store
// @Tags Stores
// @Param id path string true "Store ID"
// @Router /stores/{id} [patch]
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, err := h.storeService.UpdateStore(c.Request.Context(), id, services.StoreUpdate{
		Name:        req.Name,
		AccessToken: req.AccessToken,
	})
	if err != nil {
		if errors.Is(err, services.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
			return
		}
		h.logger.Error("failed to update store", zap.String("store_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update store"})
		return
	}

	c.JSON(http.StatusOK, store)
}

// DeleteStore disconnects a store
// @Summary Delete store
// @Tags Stores
// @Param id path string true "Store ID"
// @Router /stores/{id} [delete]
func (h *StoreHandler) DeleteStore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	if err := h.storeService.DeleteStore(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
			return
		}
		h.logger.Error("failed to delete store", zap.String("store_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete store"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store deleted"})
}

// SyncStore triggers a background refresh of the store's raw data. The
// refresh runs asynchronously; this endpoint only acknowledges the trigger.
// @Summary Trigger store sync
// @Tags Stores
// @Param id path string true "Store ID"
// @Router /stores/{id}/sync [post]
func (h *StoreHandler) SyncStore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	if err := h.syncService.TriggerSync(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrStoreNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		case errors.Is(err, services.ErrSyncInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "Sync already in progress"})
		case errors.Is(err, services.ErrSyncQueueFull):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sync queue is full, try again later"})
		default:
			h.logger.Error("failed to trigger sync", zap.String("store_id", id.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to trigger sync"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Sync started"})
}
