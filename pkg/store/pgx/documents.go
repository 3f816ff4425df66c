package pgx

import (
	"context"
	"sort"
	"sync"

	"github.com/docketlabs/docket/backend/internal/util"
	"github.com/docketlabs/docket/backend/pkg/common"
	pgdb "github.com/docketlabs/docket/backend/pkg/db/pgx"
	"github.com/docketlabs/docket/backend/pkg/store"

	"golang.org/x/sync/errgroup"
)

func (s *DocumentDBStorage) ListAccessibleDocumentIDs(ctx context.Context, userID int64) ([]int64, error) {
	q := pgdb.New(s.conn)
	return q.ListAccessibleDocumentIDs(ctx, userID)
}

func (s *DocumentDBStorage) ListDocuments(ctx context.Context, ids []int64, filter store.DocumentFilter) ([]common.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := pgdb.New(s.conn)

	var docs []common.Document
	err := store.ChunkRange(len(ids), idChunk, func(start, end int) error {
		rows, err := q.ListDocumentsFiltered(ctx, pgdb.ListDocumentsFilteredParams{
			DocumentIDs:    ids[start:end],
			UploadedAfter:  filter.UploadedAfter,
			UploadedBefore: filter.UploadedBefore,
			MimeTypes:      filter.MimeTypes,
			FolderID:       filter.FolderID,
		})
		if err != nil {
			return err
		}
		for _, r := range rows {
			docs = append(docs, common.Document{
				ID:             r.ID,
				OwnerID:        r.OwnerID,
				FolderID:       r.FolderID,
				Name:           r.Name,
				MimeType:       r.MimeType,
				IndexedTextKey: r.IndexedTextKey,
				UploadedAt:     r.UploadedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Chunked queries only order within a chunk.
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})
	return docs, nil
}

// GetIndexedTexts fetches extracted text objects concurrently, bounded by
// the configured fetch limit. A missing text provider means nothing is
// indexed yet, not an error.
func (s *DocumentDBStorage) GetIndexedTexts(ctx context.Context, docs []common.Document) (map[int64]string, error) {
	out := make(map[int64]string, len(docs))
	if s.texts == nil {
		return out, nil
	}

	var mu sync.Mutex
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(s.textFetchLimit)

	for _, doc := range docs {
		if !doc.Indexed() {
			continue
		}
		d := doc
		eg.Go(func() error {
			text, err := util.RetryWithContext(ectx, 3, func(ctx context.Context) (string, error) {
				return s.texts.GetTextObject(ctx, d.IndexedTextKey)
			})
			if err != nil {
				return err
			}
			mu.Lock()
			out[d.ID] = text
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DocumentDBStorage) ListDocumentEmbeddings(ctx context.Context, ids []int64) (map[int64][]float32, error) {
	if len(ids) == 0 {
		return map[int64][]float32{}, nil
	}
	q := pgdb.New(s.conn)

	out := make(map[int64][]float32, len(ids))
	err := store.ChunkRange(len(ids), idChunk, func(start, end int) error {
		rows, err := q.ListDocumentEmbeddings(ctx, ids[start:end])
		if err != nil {
			return err
		}
		for _, r := range rows {
			out[r.DocumentID] = r.Embedding.Slice()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
