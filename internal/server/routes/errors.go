package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/docketlabs/docket/backend/internal/server/middleware"
	"github.com/docketlabs/docket/backend/internal/timing"
	"github.com/docketlabs/docket/backend/pkg/common"
	"github.com/docketlabs/docket/backend/pkg/logger"
)

// writeErr maps engine errors onto API responses. Invalid arguments keep
// their message so callers can fix the request. Missing and inaccessible
// resources share one body, existence never leaks across tenants. Anything
// else is logged and masked.
func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Not found"})
	default:
		logger.Error("Request failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
}

// recordStat persists one latency sample for a completed query. Stats are
// best effort, a failed write is logged and the response goes out anyway.
func recordStat(c echo.Context, statType string, userID int64, start time.Time, degraded bool) {
	conn := c.(*middleware.AppContext).App.DBConn
	err := timing.RecordQueryStat(c.Request().Context(), conn, statType, userID, time.Since(start), degraded)
	if err != nil {
		logger.Warn("Failed to record query stat", "type", statType, "err", err)
	}
}
