package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/docketlabs/docket/backend/pkg/cluster"
	"github.com/docketlabs/docket/backend/pkg/mindmap"
	"github.com/docketlabs/docket/backend/pkg/search"
)

// AppUser identifies the authenticated caller. It is nil until
// AuthMiddleware has validated the request.
type AppUser struct {
	UserID int64
}

// App bundles the shared dependencies handlers need. Everything in it is
// constructed once at startup and safe for concurrent use.
type App struct {
	DBConn       *pgxpool.Pool
	Key          *keyfunc.Keyfunc
	Search       *search.Ranker
	Mindmap      *mindmap.Builder
	Clusters     *cluster.Engine
	MasterAPIKey string
	MasterUserID int64
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
