package routes

import (
	"net/http"
	"time"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/docketlabs/docket/backend/internal/server/middleware"
	"github.com/docketlabs/docket/backend/internal/timing"
	"github.com/docketlabs/docket/backend/pkg/common"
	"github.com/docketlabs/docket/backend/pkg/mindmap"
)

func GetMindmapHandler(c echo.Context) error {
	type mindmapParams struct {
		Type          string  `query:"type"`
		MinImportance float64 `query:"min_importance" validate:"omitempty,min=0,max=10"`
		DocumentID    *int64  `query:"document_id"`
	}

	params := new(mindmapParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	filter := mindmap.GraphFilter{
		MinImportance: params.MinImportance,
		DocumentID:    params.DocumentID,
	}
	if params.Type != "" {
		t := common.EntityType(params.Type)
		if !t.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid entity type: " + params.Type})
		}
		filter.Type = &t
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	start := time.Now()

	graph, err := app.Mindmap.BuildGraph(ctx, user.UserID, filter)
	if err != nil {
		return writeErr(c, err)
	}

	recordStat(c, timing.StatMindmap, user.UserID, start, false)

	return c.JSON(http.StatusOK, graph)
}

func GetEntityHandler(c echo.Context) error {
	type entityParams struct {
		EntityID int64 `param:"id" validate:"required,numeric"`
	}

	params := new(entityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	detail, err := app.Mindmap.EntityDetail(ctx, user.UserID, params.EntityID)
	if err != nil {
		return writeErr(c, err)
	}

	return c.JSON(http.StatusOK, detail)
}
