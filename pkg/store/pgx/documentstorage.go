package pgx

import (
	"context"

	"github.com/docketlabs/docket/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Large id sets are passed to Postgres in chunks of this size.
const idChunk = 1000

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// DocumentDBStorage implements the store.DocumentStore interface using
// PostgreSQL with pgvector for document embeddings. Extracted document text
// is resolved through a TextProvider backed by object storage.
type DocumentDBStorage struct {
	conn           pgxIConn
	texts          store.TextProvider
	textFetchLimit int
}

type DocumentDBStorageOption func(*DocumentDBStorage)

// WithTextFetchLimit caps how many text objects are fetched concurrently.
func WithTextFetchLimit(n int) DocumentDBStorageOption {
	return func(s *DocumentDBStorage) {
		if n > 0 {
			s.textFetchLimit = n
		}
	}
}

// NewDocumentDBStorage creates a new DocumentDBStorage using an existing
// database connection. texts may be nil when no object storage is
// configured, in which case no document counts as indexed.
func NewDocumentDBStorage(conn pgxIConn, texts store.TextProvider, opts ...DocumentDBStorageOption) *DocumentDBStorage {
	s := &DocumentDBStorage{
		conn:           conn,
		texts:          texts,
		textFetchLimit: 8,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}
