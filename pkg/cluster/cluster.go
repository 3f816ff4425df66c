// Package cluster partitions a user's accessible documents into
// content-similarity groups. A greedy single pass in upload order compares
// each document against every open cluster, joining the best match above a
// similarity threshold or opening a new cluster. Results persist per user
// as an atomically replaced generation; reads serve the stored set until it
// goes stale.
package cluster

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/docketlabs/docket/backend/pkg/access"
	"github.com/docketlabs/docket/backend/pkg/ai"
	"github.com/docketlabs/docket/backend/pkg/common"
	"github.com/docketlabs/docket/backend/pkg/leaselock"
	"github.com/docketlabs/docket/backend/pkg/logger"
	"github.com/docketlabs/docket/backend/pkg/store"

	"golang.org/x/sync/singleflight"
)

const (
	defaultThreshold     = 0.3
	defaultMaxAge        = 24 * time.Hour
	defaultLabelKeywords = 5

	// leaseTTL bounds how long a crashed refresh can block the next one.
	leaseTTL = 2 * time.Minute
)

// Engine computes and serves document clusters. Refreshes for one user
// coalesce in-process through singleflight and serialize across processes
// through a lease lock; different users never contend.
type Engine struct {
	store         store.DocumentStore
	access        *access.Filter
	embedder      ai.EmbeddingClient
	locks         *leaselock.Client
	threshold     float64
	maxAge        time.Duration
	labelKeywords int
	now           func() time.Time

	group singleflight.Group
}

// NewEngineParams configures an Engine. Embedder gates embedding-based
// similarity and may be nil; Locks may be nil, dropping cross-process
// serialization (useful in tests). Zero-valued tunables fall back to their
// defaults.
type NewEngineParams struct {
	Store               store.DocumentStore
	Access              *access.Filter
	Embedder            ai.EmbeddingClient
	Locks               *leaselock.Client
	SimilarityThreshold float64
	MaxAge              time.Duration
	LabelKeywords       int
}

// Option customizes an Engine beyond its params.
type Option func(*Engine)

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine with the provided parameters.
func NewEngine(params NewEngineParams, opts ...Option) *Engine {
	threshold := params.SimilarityThreshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	labelKeywords := params.LabelKeywords
	if labelKeywords <= 0 {
		labelKeywords = defaultLabelKeywords
	}

	e := &Engine{
		store:         params.Store,
		access:        params.Access,
		embedder:      params.Embedder,
		locks:         params.Locks,
		threshold:     threshold,
		maxAge:        maxAge,
		labelKeywords: labelKeywords,
		now:           time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Clusters returns the user's current cluster set. A stored set younger
// than the max age is served as-is apart from lazy visibility filtering:
// members the user can no longer see are dropped, as are clusters left
// empty. An absent or stale set triggers a synchronous recompute.
func (e *Engine) Clusters(ctx context.Context, userID int64) ([]common.Cluster, error) {
	set, err := e.store.GetClusterSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if set == nil || e.now().Sub(set.CreatedAt) > e.maxAge {
		return e.Refresh(ctx, userID)
	}

	accessible, err := e.access.AccessibleDocumentIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterVisible(set.Clusters, accessible), nil
}

// Refresh recomputes the user's clusters and atomically replaces the
// persisted set, returning the new one. Concurrent refreshes for the same
// user coalesce into a single computation.
func (e *Engine) Refresh(ctx context.Context, userID int64) ([]common.Cluster, error) {
	result, err, _ := e.group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		if e.locks == nil {
			return e.recompute(ctx, userID)
		}

		var clusters []common.Cluster
		key := fmt.Sprintf("clusters:user:%d", userID)
		leaseErr := e.locks.WithLease(ctx, key, leaselock.Options{TTL: leaseTTL, Wait: true}, func(leaseCtx context.Context) error {
			var err error
			clusters, err = e.recompute(leaseCtx, userID)
			return err
		})
		return clusters, leaseErr
	})
	if err != nil {
		return nil, err
	}
	return result.([]common.Cluster), nil
}

func (e *Engine) recompute(ctx context.Context, userID int64) ([]common.Cluster, error) {
	accessible, err := e.access.AccessibleDocumentIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs := []common.Document{}
	if len(accessible) > 0 {
		docs, err = e.store.ListDocuments(ctx, store.SortedIDs(accessible), store.DocumentFilter{})
		if err != nil {
			return nil, err
		}
	}
	if len(docs) < 2 {
		// One document is not a grouping. The empty generation still
		// persists so the read path sees a fresh set.
		return e.store.ReplaceClusterSet(ctx, userID, []common.Cluster{})
	}

	docIDs := make([]int64, 0, len(docs))
	for _, d := range docs {
		docIDs = append(docIDs, d.ID)
	}
	occurrences, err := e.store.ListDocumentEntities(ctx, docIDs)
	if err != nil {
		return nil, err
	}

	embeddings := map[int64][]float32{}
	if e.embedder != nil {
		embeddings, err = e.store.ListDocumentEmbeddings(ctx, docIDs)
		if err != nil {
			logger.Warn("Cluster refresh falling back to entity-set similarity", "user_id", userID, "err", err)
			embeddings = map[int64][]float32{}
		}
	}

	corp := buildCorpus(docs, occurrences, embeddings)
	protos := greedyPass(corp.features, e.threshold)

	clusters := make([]common.Cluster, 0, len(protos))
	for n, p := range protos {
		clusters = append(clusters, common.Cluster{
			Name:        fmt.Sprintf("Document Cluster %d", n+1),
			Description: fmt.Sprintf("Group of %d similar documents", len(p.members)),
			Keywords:    keywords(corp, p, e.labelKeywords),
			Members:     memberList(corp, p),
		})
	}

	return e.store.ReplaceClusterSet(ctx, userID, clusters)
}

// filterVisible drops members the user can no longer see and clusters left
// empty by that. Stored sets are never repaired on read; the next refresh
// rebuilds them.
func filterVisible(clusters []common.Cluster, accessible map[int64]struct{}) []common.Cluster {
	out := []common.Cluster{}
	for _, c := range clusters {
		members := make([]common.ClusterMember, 0, len(c.Members))
		for _, m := range c.Members {
			if _, ok := accessible[m.DocumentID]; ok {
				members = append(members, m)
			}
		}
		if len(members) == 0 {
			continue
		}
		c.Members = members
		out = append(out, c)
	}
	return out
}
