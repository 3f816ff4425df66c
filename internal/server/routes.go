package server

import (
	"github.com/docketlabs/docket/backend/internal/server/middleware"
	"github.com/docketlabs/docket/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Search routes
	apiRoutes.POST("/search", routes.PostSearchHandler)

	// Mindmap routes
	apiRoutes.GET("/mindmap", routes.GetMindmapHandler)
	apiRoutes.GET("/mindmap/entities/:id", routes.GetEntityHandler)

	// Cluster routes
	apiRoutes.GET("/clusters", routes.GetClustersHandler)
	apiRoutes.POST("/clusters/refresh", routes.PostClustersRefreshHandler)
}
