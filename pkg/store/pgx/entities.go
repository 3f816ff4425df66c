package pgx

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/docketlabs/docket/backend/pkg/common"
	pgdb "github.com/docketlabs/docket/backend/pkg/db/pgx"
	"github.com/docketlabs/docket/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

func entityTypeStrings(types []common.EntityType) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

func (s *DocumentDBStorage) ListTopEntities(ctx context.Context, documentIDs []int64, filter store.EntityFilter) ([]common.Entity, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	q := pgdb.New(s.conn)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1 << 30
	}

	var merged []common.Entity
	seen := make(map[int64]struct{})
	err := store.ChunkRange(len(documentIDs), idChunk, func(start, end int) error {
		rows, err := q.ListTopEntities(ctx, pgdb.ListTopEntitiesParams{
			DocumentIDs:   documentIDs[start:end],
			Types:         entityTypeStrings(filter.Types),
			MinImportance: filter.MinImportance,
			EntityLimit:   int32(limit),
		})
		if err != nil {
			return err
		}
		for _, r := range rows {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, common.Entity{
				ID:         r.ID,
				Name:       r.Name,
				Type:       common.EntityType(r.Type),
				Importance: r.Importance,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Importance != merged[j].Importance {
			return merged[i].Importance > merged[j].Importance
		}
		if merged[i].Name != merged[j].Name {
			return merged[i].Name < merged[j].Name
		}
		return merged[i].ID < merged[j].ID
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (s *DocumentDBStorage) ListEntityMentions(ctx context.Context, documentIDs []int64) ([]common.EntityMention, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	q := pgdb.New(s.conn)

	var mentions []common.EntityMention
	err := store.ChunkRange(len(documentIDs), idChunk, func(start, end int) error {
		rows, err := q.ListEntityMentions(ctx, documentIDs[start:end])
		if err != nil {
			return err
		}
		for _, r := range rows {
			mentions = append(mentions, common.EntityMention{
				DocumentID: r.DocumentID,
				EntityID:   r.EntityID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mentions, nil
}

func (s *DocumentDBStorage) ListDocumentEntities(ctx context.Context, documentIDs []int64) ([]store.DocumentEntity, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	q := pgdb.New(s.conn)

	var items []store.DocumentEntity
	err := store.ChunkRange(len(documentIDs), idChunk, func(start, end int) error {
		rows, err := q.ListEntityMentionsDetailed(ctx, documentIDs[start:end])
		if err != nil {
			return err
		}
		for _, r := range rows {
			items = append(items, store.DocumentEntity{
				DocumentID: r.DocumentID,
				Entity: common.Entity{
					ID:         r.EntityID,
					Name:       r.Name,
					Type:       common.EntityType(r.Type),
					Importance: r.Importance,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *DocumentDBStorage) GetEntity(ctx context.Context, id int64) (common.Entity, error) {
	q := pgdb.New(s.conn)
	row, err := q.GetEntity(ctx, id)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return common.Entity{}, fmt.Errorf("entity %d: %w", id, common.ErrNotFound)
		}
		return common.Entity{}, err
	}
	return common.Entity{
		ID:         row.ID,
		Name:       row.Name,
		Type:       common.EntityType(row.Type),
		Importance: row.Importance,
	}, nil
}

func (s *DocumentDBStorage) ListEntityDocuments(ctx context.Context, entityID int64, documentIDs []int64) ([]common.DocumentMention, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	q := pgdb.New(s.conn)

	var mentions []common.DocumentMention
	err := store.ChunkRange(len(documentIDs), idChunk, func(start, end int) error {
		rows, err := q.ListEntityDocuments(ctx, pgdb.ListEntityDocumentsParams{
			EntityID:    entityID,
			DocumentIDs: documentIDs[start:end],
		})
		if err != nil {
			return err
		}
		for _, r := range rows {
			mentions = append(mentions, common.DocumentMention{
				DocumentID: r.DocumentID,
				Name:       r.Name,
				UploadedAt: r.UploadedAt,
				Context:    r.Context,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].UploadedAt.Equal(mentions[j].UploadedAt) {
			return mentions[i].DocumentID > mentions[j].DocumentID
		}
		return mentions[i].UploadedAt.After(mentions[j].UploadedAt)
	})
	return mentions, nil
}
