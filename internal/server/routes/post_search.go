package routes

import (
	"net/http"
	"time"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/docketlabs/docket/backend/internal/server/middleware"
	"github.com/docketlabs/docket/backend/internal/timing"
	"github.com/docketlabs/docket/backend/pkg/common"
	"github.com/docketlabs/docket/backend/pkg/search"
)

func PostSearchHandler(c echo.Context) error {
	type searchBody struct {
		Query            string     `json:"query"`
		UploadedAfter    *time.Time `json:"uploaded_after"`
		UploadedBefore   *time.Time `json:"uploaded_before"`
		MimeTypes        []string   `json:"mime_types"`
		FolderID         *int64     `json:"folder_id"`
		EntityTypes      []string   `json:"entity_types"`
		MinAvgImportance float64    `json:"min_avg_importance" validate:"omitempty,min=0,max=10"`
		Page             int        `json:"page"`
		PageSize         int        `json:"page_size"`
		UseSemantic      bool       `json:"use_semantic"`
	}

	body := new(searchBody)
	if err := c.Bind(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := c.Validate(body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	entityTypes := make([]common.EntityType, 0, len(body.EntityTypes))
	for _, raw := range body.EntityTypes {
		t := common.EntityType(raw)
		if !t.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid entity type: " + raw})
		}
		entityTypes = append(entityTypes, t)
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	start := time.Now()

	page, err := app.Search.Search(ctx, user.UserID, search.Request{
		Query:            body.Query,
		UploadedAfter:    body.UploadedAfter,
		UploadedBefore:   body.UploadedBefore,
		MimeTypes:        body.MimeTypes,
		FolderID:         body.FolderID,
		EntityTypes:      entityTypes,
		MinAvgImportance: body.MinAvgImportance,
		Page:             body.Page,
		PageSize:         body.PageSize,
		UseSemantic:      body.UseSemantic,
	})
	if err != nil {
		return writeErr(c, err)
	}

	recordStat(c, timing.StatSearch, user.UserID, start, page.Degraded)

	return c.JSON(http.StatusOK, page)
}
