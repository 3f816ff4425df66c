package store

import (
	"context"
	"time"

	"github.com/docketlabs/docket/backend/pkg/common"
)

// DocumentFilter narrows a document set by upload window, mime types and
// folder. Zero values match everything.
type DocumentFilter struct {
	UploadedAfter  *time.Time
	UploadedBefore *time.Time
	MimeTypes      []string
	FolderID       *int64
}

// EntityFilter narrows an entity set. Limit caps the result after ordering
// by importance descending; Limit <= 0 means no cap.
type EntityFilter struct {
	Types         []common.EntityType
	MinImportance float64
	Limit         int
}

// DocumentEntity is an entity occurrence in a document with the entity
// attributes attached, the shape scoring and labeling work from.
type DocumentEntity struct {
	DocumentID int64
	Entity     common.Entity
}

// ClusterSet is one persisted cluster generation for a user.
type ClusterSet struct {
	SetID     string
	CreatedAt time.Time
	Clusters  []common.Cluster
}

// TextProvider fetches extracted document text from object storage by key.
type TextProvider interface {
	GetTextObject(ctx context.Context, key string) (string, error)
}

// DocumentStore is the persistence boundary for the intelligence engines.
// Implementations never apply per-user visibility themselves; callers pass
// already-authorized document id sets, resolved through the access filter.
type DocumentStore interface {
	// ListAccessibleDocumentIDs returns every document id the user owns or
	// has a share on. Unknown users yield an empty result.
	ListAccessibleDocumentIDs(ctx context.Context, userID int64) ([]int64, error)

	// ListDocuments returns the documents out of ids matching the filter,
	// ordered by upload time ascending then id ascending.
	ListDocuments(ctx context.Context, ids []int64, filter DocumentFilter) ([]common.Document, error)

	// GetIndexedTexts fetches the extracted text for every indexed document
	// in docs. Unindexed documents are skipped.
	GetIndexedTexts(ctx context.Context, docs []common.Document) (map[int64]string, error)

	// ListDocumentEmbeddings returns the stored embedding per document id.
	// Documents without one are absent from the map.
	ListDocumentEmbeddings(ctx context.Context, ids []int64) (map[int64][]float32, error)

	// ListTopEntities returns the entities occurring in the given documents
	// matching the filter, ordered by importance descending with a stable
	// name tie-break.
	ListTopEntities(ctx context.Context, documentIDs []int64, filter EntityFilter) ([]common.Entity, error)

	// ListEntityMentions returns (document, entity) id pairs for the given
	// documents.
	ListEntityMentions(ctx context.Context, documentIDs []int64) ([]common.EntityMention, error)

	// ListDocumentEntities returns every entity occurrence in the given
	// documents with entity attributes attached.
	ListDocumentEntities(ctx context.Context, documentIDs []int64) ([]DocumentEntity, error)

	// GetEntity returns the entity or common.ErrNotFound.
	GetEntity(ctx context.Context, id int64) (common.Entity, error)

	// ListEntityDocuments returns the documents out of documentIDs that
	// mention the entity, newest first, with extraction context.
	ListEntityDocuments(ctx context.Context, entityID int64, documentIDs []int64) ([]common.DocumentMention, error)

	// GetClusterSet returns the newest persisted cluster generation for the
	// user, or nil when none exists.
	GetClusterSet(ctx context.Context, userID int64) (*ClusterSet, error)

	// ReplaceClusterSet atomically replaces the user's persisted clusters
	// with a new generation and returns it with ids assigned.
	ReplaceClusterSet(ctx context.Context, userID int64, clusters []common.Cluster) ([]common.Cluster, error)
}
