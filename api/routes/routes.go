package routes

import (
	"github.com/chips520/wms-simple-version/api/handlers"
	"github.com/chips520/wms-simple-version/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes sets up all the routes for the server
func SetupRoutes(r *gin.Engine, svc service.LocationService, log *logrus.Logger) {
	// Health check
	r.GET("/health", handlers.HealthCheck)

	// Location routes
	locationHandler := handlers.NewLocationHandler(svc, log)
	locations := r.Group("/locations")
	{
		locations.POST("", locationHandler.CreateLocation)
		locations.GET("", locationHandler.ListLocations)
		locations.GET("/:id", locationHandler.GetLocation)
		locations.PUT("/:id", locationHandler.UpdateLocation)
		locations.DELETE("/:id", locationHandler.DeleteLocation)

		// Clear and batch operations
		locations.POST("/clear-one", locationHandler.ClearLocation)
		locations.POST("/clear-by-material-tray", locationHandler.ClearByMaterialTray)
		locations.POST("/batch-update", locationHandler.BatchUpdateLocations)
		locations.POST("/batch-clear", locationHandler.BatchClearLocations)
	}
}
