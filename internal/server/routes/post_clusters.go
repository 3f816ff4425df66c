package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/docketlabs/docket/backend/internal/server/middleware"
	"github.com/docketlabs/docket/backend/internal/timing"
)

func PostClustersRefreshHandler(c echo.Context) error {
	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	start := time.Now()

	clusters, err := app.Clusters.Refresh(ctx, user.UserID)
	if err != nil {
		return writeErr(c, err)
	}

	recordStat(c, timing.StatClusters, user.UserID, start, false)

	return c.JSON(http.StatusOK, clusters)
}
