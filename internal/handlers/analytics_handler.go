// Package handlers contains the gin HTTP handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulse-platform/service-store-analytics/internal/analytics"
	"github.com/pulse-platform/service-store-analytics/internal/services"
)

const dateLayout = "2006-01-02"

// AnalyticsHandler handles the analytics endpoints.
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	storeService     *services.StoreService
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analyticsService *analytics.Service, storeService *services.StoreService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		storeService:     storeService,
		logger:           logger,
	}
}

// GetStoreAnalytics returns the full analytics block for a store
// @Summary Get store analytics
// @Tags Analytics
// @Param storeId path string true "Store ID"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param comparisonPeriod query string false "previous_period | last_month | last_year"
// @Success 200 {object} analytics.StoreAnalytics
// @Router /analytics/{storeId} [get]
func (h *AnalyticsHandler) GetStoreAnalytics(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if !validDate(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format"})
		return
	}
	if !validDate(endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format"})
		return
	}

	if _, err := h.storeService.GetStore(c.Request.Context(), storeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	result, err := h.analyticsService.GetStoreAnalytics(c.Request.Context(), storeID, analytics.QueryParams{
		StartDate:        startDate,
		EndDate:          endDate,
		ComparisonPeriod: c.Query("comparisonPeriod"),
	})
	if err != nil {
		h.logger.Error("failed to compute store analytics",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSessionMetrics returns the raw session metric rows for a store
// @Summary Get session metrics
// @Tags Analytics
// @Param storeId path string true "Store ID"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Router /analytics/{storeId}/sessions [get]
func (h *AnalyticsHandler) GetSessionMetrics(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if !validDate(startDate) || !validDate(endDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	if _, err := h.storeService.GetStore(c.Request.Context(), storeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	sessions, err := h.analyticsService.GetSessionMetrics(c.Request.Context(), storeID, startDate, endDate)
	if err != nil {
		h.logger.Error("failed to list session metrics",
			zap.String("store_id", storeID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list session metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// validDate accepts empty or YYYY-MM-DD.
func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
