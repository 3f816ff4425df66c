package pgx

import (
	"context"
	"errors"

	"github.com/docketlabs/docket/backend/internal/util"
	"github.com/docketlabs/docket/backend/pkg/common"
	pgdb "github.com/docketlabs/docket/backend/pkg/db/pgx"
	"github.com/docketlabs/docket/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func (s *DocumentDBStorage) GetClusterSet(ctx context.Context, userID int64) (*store.ClusterSet, error) {
	q := pgdb.New(s.conn)

	latest, err := q.GetLatestClusterSet(ctx, userID)
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := q.ListClustersBySet(ctx, pgdb.ListClustersBySetParams{
		UserID: userID,
		SetID:  latest.SetID,
	})
	if err != nil {
		return nil, err
	}

	clusterIDs := make([]int64, 0, len(rows))
	byID := make(map[int64]int, len(rows))
	clusters := make([]common.Cluster, len(rows))
	for i, r := range rows {
		clusterIDs = append(clusterIDs, r.ID)
		byID[r.ID] = i
		clusters[i] = common.Cluster{
			ID:          r.PublicID,
			Name:        r.Name,
			Description: r.Description,
			Keywords:    r.Keywords,
			CreatedAt:   r.CreatedAt,
		}
	}

	err = store.ChunkRange(len(clusterIDs), idChunk, func(start, end int) error {
		members, err := q.ListClusterMembers(ctx, clusterIDs[start:end])
		if err != nil {
			return err
		}
		for _, m := range members {
			idx, ok := byID[m.ClusterID]
			if !ok {
				continue
			}
			clusters[idx].Members = append(clusters[idx].Members, common.ClusterMember{
				DocumentID: m.DocumentID,
				Name:       m.Name,
				Similarity: m.Similarity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &store.ClusterSet{
		SetID:     latest.SetID,
		CreatedAt: latest.CreatedAt,
		Clusters:  clusters,
	}, nil
}

// ReplaceClusterSet writes a new cluster generation in one transaction:
// the previous generation is deleted and the new one inserted, so readers
// never observe a partial set.
func (s *DocumentDBStorage) ReplaceClusterSet(ctx context.Context, userID int64, clusters []common.Cluster) ([]common.Cluster, error) {
	setID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	qtx := pgdb.New(tx)

	if err := qtx.DeleteUserClusterSets(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := qtx.InsertClusterSet(ctx, pgdb.InsertClusterSetParams{
		SetID:  setID,
		UserID: userID,
	}); err != nil {
		return nil, err
	}

	out := make([]common.Cluster, len(clusters))
	for i, c := range clusters {
		publicID, err := gonanoid.New()
		if err != nil {
			return nil, err
		}

		// Keywords carry entity names straight from ingestion.
		keywords := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			keywords = append(keywords, util.SanitizePostgresText(k))
		}

		row, err := qtx.InsertCluster(ctx, pgdb.InsertClusterParams{
			PublicID:    publicID,
			UserID:      userID,
			SetID:       setID,
			Name:        c.Name,
			Description: c.Description,
			Keywords:    keywords,
		})
		if err != nil {
			return nil, err
		}

		docIDs := make([]int64, 0, len(c.Members))
		similarities := make([]float64, 0, len(c.Members))
		positions := make([]int32, 0, len(c.Members))
		for pos, m := range c.Members {
			docIDs = append(docIDs, m.DocumentID)
			similarities = append(similarities, m.Similarity)
			positions = append(positions, int32(pos))
		}
		if len(docIDs) > 0 {
			err = qtx.InsertClusterMembers(ctx, pgdb.InsertClusterMembersParams{
				ClusterID:    row.ID,
				DocumentIDs:  docIDs,
				Similarities: similarities,
				Positions:    positions,
			})
			if err != nil {
				return nil, err
			}
		}

		c.ID = publicID
		c.CreatedAt = row.CreatedAt
		out[i] = c
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
