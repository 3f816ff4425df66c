package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mid "github.com/docketlabs/docket/backend/internal/server/middleware"
	"github.com/docketlabs/docket/backend/internal/storage"
	"github.com/docketlabs/docket/backend/internal/util"
	"github.com/docketlabs/docket/backend/pkg/access"
	"github.com/docketlabs/docket/backend/pkg/ai"
	"github.com/docketlabs/docket/backend/pkg/ai/ollama"
	"github.com/docketlabs/docket/backend/pkg/ai/openai"
	"github.com/docketlabs/docket/backend/pkg/cluster"
	"github.com/docketlabs/docket/backend/pkg/leaselock"
	"github.com/docketlabs/docket/backend/pkg/logger"
	"github.com/docketlabs/docket/backend/pkg/mindmap"
	"github.com/docketlabs/docket/backend/pkg/search"
	"github.com/docketlabs/docket/backend/pkg/store"
	storepgx "github.com/docketlabs/docket/backend/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// runMigrations applies pending schema migrations before the server takes
// traffic. Set MIGRATE_ON_START=false when an external pipeline owns the
// schema.
func runMigrations() {
	if !util.GetEnvBool("MIGRATE_ON_START", true) {
		return
	}

	db, err := sql.Open("postgres", util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to open database for migrations", "err", err)
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		logger.Fatal("Failed to prepare migration driver", "err", err)
	}

	path := util.GetEnvString("MIGRATIONS_PATH", "migrations")
	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		logger.Fatal("Failed to load migrations", "path", path, "err", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to apply migrations", "err", err)
	}

	logger.Info("Database migrations applied")
}

// newEmbeddingClient builds the embedding collaborator from env. A missing
// adapter or model disables semantic features instead of failing startup.
func newEmbeddingClient() ai.EmbeddingClient {
	adapter := util.GetEnv("AI_ADAPTER")
	model := util.GetEnv("AI_EMBED_MODEL")
	if adapter == "" || adapter == "none" || model == "" {
		logger.Warn("No embedding adapter configured, semantic features disabled")
		return nil
	}

	timeout := time.Duration(util.GetEnvNumeric("AI_TIMEOUT_SEC", 30)) * time.Second
	parallel := int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15))
	dimensions := int(util.GetEnvNumeric("AI_EMBED_DIM", 1536))

	switch adapter {
	case "ollama":
		client, err := ollama.NewOllamaEmbeddingClient(ollama.NewOllamaEmbeddingClientParams{
			EmbeddingModel: model,

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			APIKey:  util.GetEnv("AI_EMBED_KEY"),

			Dimensions: dimensions,
			Timeout:    timeout,

			MaxConcurrentRequests: parallel,
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return ai.NewBreakerClient("ollama-embed", client)
	default:
		client := openai.NewOpenAIEmbeddingClient(openai.NewOpenAIEmbeddingClientParams{
			EmbeddingModel: model,

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			APIKey:  util.GetEnv("AI_EMBED_KEY"),

			Dimensions: dimensions,
			Timeout:    timeout,

			MaxConcurrentRequests: parallel,
		})
		return ai.NewBreakerClient("openai-embed", client)
	}
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	dbCfg, err := pgxpool.ParseConfig(util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to parse database config", "err", err)
	}
	// Document embeddings come back as pgvector values.
	dbCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, dbCfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	var texts store.TextProvider
	if bucket := util.GetEnv("AWS_BUCKET"); bucket != "" {
		s3Client, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("Failed to create S3 client", "err", err)
		}
		texts = storage.NewTextStore(storage.NewTextStoreParams{
			Client: s3Client,
			Bucket: bucket,
			Prefix: util.GetEnv("TEXT_KEY_PREFIX"),
		})
	} else {
		logger.Warn("AWS_BUCKET not set, document text unavailable to search")
	}

	docs := storepgx.NewDocumentDBStorage(conn, texts)
	accessFilter := access.NewFilter(docs)
	embedder := newEmbeddingClient()

	searcher := search.NewRanker(search.NewRankerParams{
		Store:    docs,
		Access:   accessFilter,
		Embedder: embedder,
		Weights: search.Weights{
			Lexical:  util.GetEnvFloat("SEARCH_W_LEXICAL", 0.5),
			Semantic: util.GetEnvFloat("SEARCH_W_SEMANTIC", 0.3),
			Recency:  util.GetEnvFloat("SEARCH_W_RECENCY", 0.1),
			Entity:   util.GetEnvFloat("SEARCH_W_ENTITY", 0.1),
		},
		RecencyHalfLifeDays: util.GetEnvFloat("SEARCH_RECENCY_HALFLIFE_DAYS", 30),
		MaxPageSize:         int(util.GetEnvNumeric("SEARCH_MAX_PAGE_SIZE", 100)),
	})

	graphs := mindmap.NewBuilder(mindmap.NewBuilderParams{
		Store:       docs,
		Access:      accessFilter,
		MaxEntities: int(util.GetEnvNumeric("GRAPH_MAX_ENTITIES", 100)),
	})

	clusters := cluster.NewEngine(cluster.NewEngineParams{
		Store:               docs,
		Access:              accessFilter,
		Embedder:            embedder,
		Locks:               leaselock.New(conn),
		SimilarityThreshold: util.GetEnvFloat("CLUSTER_SIMILARITY_THRESHOLD", 0.3),
		MaxAge:              time.Duration(util.GetEnvNumeric("CLUSTER_MAX_AGE_HOURS", 24)) * time.Hour,
		LabelKeywords:       int(util.GetEnvNumeric("CLUSTER_LABEL_KEYWORDS", 5)),
	})

	masterAPIKey := util.GetEnv("MASTER_API_KEY")
	masterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 64)

	app := &mid.App{
		DBConn:       conn,
		Key:          &k,
		Search:       searcher,
		Mindmap:      graphs,
		Clusters:     clusters,
		MasterAPIKey: masterAPIKey,
		MasterUserID: masterUserID,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Warn("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "err", v.Error)
				return nil
			}
			logger.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
