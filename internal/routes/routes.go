// Package routes registers the API routes.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/pulse-platform/service-store-analytics/internal/handlers"
)

// RouteConfig holds the handlers wired into the router.
type RouteConfig struct {
	StoreHandler     *handlers.StoreHandler
	AnalyticsHandler *handlers.AnalyticsHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *RouteConfig) {
	v1 := router.Group("/api/v1")

	stores := v1.Group("/stores")
	{
		stores.POST("", cfg.StoreHandler.CreateStore)
		stores.GET("", cfg.StoreHandler.ListStores)
		stores.GET("/:id", cfg.StoreHandler.GetStore)
		stores.PATCH("/:id", cfg.StoreHandler.UpdateStore)
		stores.DELETE("/:id", cfg.StoreHandler.DeleteStore)
		stores.POST("/:id/sync", cfg.StoreHandler.SyncStore)
	}

	analytics := v1.Group("/analytics")
	{
		analytics.GET("/:storeId", cfg.AnalyticsHandler.GetStoreAnalytics)
		analytics.GET("/:storeId/sessions", cfg.AnalyticsHandler.GetSessionMetrics)
	}
}
