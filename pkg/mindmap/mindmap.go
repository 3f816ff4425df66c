// Package mindmap builds the entity co-occurrence graph rendered as the
// document mind map. Nodes are the most important entities across a user's
// accessible documents; an edge connects two entities that share at least
// one document, weighted by the number of distinct accessible documents
// containing both. All queries stay inside the caller's accessible set.
package mindmap

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/docketlabs/docket/backend/pkg/access"
	"github.com/docketlabs/docket/backend/pkg/common"
	"github.com/docketlabs/docket/backend/pkg/store"
)

const (
	defaultMaxEntities = 100
	maxRelatedEntities = 25
)

// GraphFilter narrows the graph. Type and MinImportance restrict the
// candidate entities; DocumentID scopes the graph to a single document.
type GraphFilter struct {
	Type          *common.EntityType
	MinImportance float64
	DocumentID    *int64
}

// Builder constructs entity graphs and entity detail views. It is
// stateless and safe for concurrent use.
type Builder struct {
	store       store.DocumentStore
	access      *access.Filter
	maxEntities int
}

// NewBuilderParams configures a Builder. MaxEntities caps the number of
// graph nodes; zero falls back to the default of 100.
type NewBuilderParams struct {
	Store       store.DocumentStore
	Access      *access.Filter
	MaxEntities int
}

// NewBuilder creates a Builder with the provided parameters.
func NewBuilder(params NewBuilderParams) *Builder {
	maxEntities := params.MaxEntities
	if maxEntities <= 0 {
		maxEntities = defaultMaxEntities
	}
	return &Builder{
		store:       params.Store,
		access:      params.Access,
		maxEntities: maxEntities,
	}
}

// BuildGraph returns the co-occurrence graph over the user's accessible
// documents, optionally narrowed by filter. Users without accessible
// documents get an empty graph, as does a document scope outside the
// accessible set.
func (b *Builder) BuildGraph(ctx context.Context, userID int64, filter GraphFilter) (common.EntityGraph, error) {
	empty := common.EntityGraph{Nodes: []common.GraphNode{}, Edges: []common.GraphEdge{}}

	accessible, err := b.access.AccessibleDocumentIDs(ctx, userID)
	if err != nil {
		return common.EntityGraph{}, err
	}

	var docIDs []int64
	if filter.DocumentID != nil {
		// A scope outside the accessible set behaves exactly like a scope
		// on a nonexistent document.
		docIDs = access.Restrict(accessible, []int64{*filter.DocumentID})
	} else {
		docIDs = store.SortedIDs(accessible)
	}
	if len(docIDs) == 0 {
		return empty, nil
	}

	entityFilter := store.EntityFilter{
		MinImportance: filter.MinImportance,
		Limit:         b.maxEntities,
	}
	if filter.Type != nil {
		entityFilter.Types = []common.EntityType{*filter.Type}
	}
	candidates, err := b.store.ListTopEntities(ctx, docIDs, entityFilter)
	if err != nil {
		return common.EntityGraph{}, err
	}
	if len(candidates) == 0 {
		return empty, nil
	}

	mentions, err := b.store.ListEntityMentions(ctx, docIDs)
	if err != nil {
		return common.EntityGraph{}, err
	}

	candidateSet := make(map[int64]struct{}, len(candidates))
	for _, e := range candidates {
		candidateSet[e.ID] = struct{}{}
	}

	entitiesByDoc := make(map[int64][]int64)
	seen := make(map[[2]int64]struct{}, len(mentions))
	for _, m := range mentions {
		if _, ok := candidateSet[m.EntityID]; !ok {
			continue
		}
		key := [2]int64{m.DocumentID, m.EntityID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entitiesByDoc[m.DocumentID] = append(entitiesByDoc[m.DocumentID], m.EntityID)
	}

	docCounts := make(map[int64]int, len(candidates))
	pairWeights := make(map[[2]int64]int)
	for _, entityIDs := range entitiesByDoc {
		sort.Slice(entityIDs, func(i, j int) bool { return entityIDs[i] < entityIDs[j] })
		for i, a := range entityIDs {
			docCounts[a]++
			// Each unordered pair counts once per document, lower id first.
			for _, c := range entityIDs[i+1:] {
				pairWeights[[2]int64{a, c}]++
			}
		}
	}

	nodes := make([]common.GraphNode, 0, len(candidates))
	for _, e := range candidates {
		nodes = append(nodes, common.GraphNode{
			ID:         e.ID,
			Name:       e.Name,
			Type:       e.Type,
			Importance: e.Importance,
			Size:       nodeSize(e.Importance),
			Documents:  docCounts[e.ID],
		})
	}

	edges := make([]common.GraphEdge, 0, len(pairWeights))
	for pair, weight := range pairWeights {
		edges = append(edges, common.GraphEdge{Source: pair[0], Target: pair[1], Weight: weight})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Weight != edges[j].Weight {
			return edges[i].Weight > edges[j].Weight
		}
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	return common.EntityGraph{Nodes: nodes, Edges: edges}, nil
}

// EntityDetail returns the drill-down view for one entity: the accessible
// documents mentioning it and the entities it co-occurs with most. An
// unknown entity and an entity outside the user's accessible documents are
// indistinguishable, both yield common.ErrNotFound.
func (b *Builder) EntityDetail(ctx context.Context, userID int64, entityID int64) (common.EntityDetail, error) {
	entity, err := b.store.GetEntity(ctx, entityID)
	if err != nil {
		return common.EntityDetail{}, err
	}

	accessible, err := b.access.AccessibleDocumentIDs(ctx, userID)
	if err != nil {
		return common.EntityDetail{}, err
	}
	if len(accessible) == 0 {
		return common.EntityDetail{}, fmt.Errorf("entity %d: %w", entityID, common.ErrNotFound)
	}

	documents, err := b.store.ListEntityDocuments(ctx, entityID, store.SortedIDs(accessible))
	if err != nil {
		return common.EntityDetail{}, err
	}
	if len(documents) == 0 {
		return common.EntityDetail{}, fmt.Errorf("entity %d: %w", entityID, common.ErrNotFound)
	}

	docIDs := make([]int64, 0, len(documents))
	for _, d := range documents {
		docIDs = append(docIDs, d.DocumentID)
	}
	related, err := b.relatedEntities(ctx, entityID, docIDs)
	if err != nil {
		return common.EntityDetail{}, err
	}

	return common.EntityDetail{
		Entity:    entity,
		Documents: documents,
		Related:   related,
	}, nil
}

// relatedEntities ranks the entities sharing documents with the inspected
// one by how many of those documents they appear in.
func (b *Builder) relatedEntities(ctx context.Context, entityID int64, docIDs []int64) ([]common.RelatedEntity, error) {
	occurrences, err := b.store.ListDocumentEntities(ctx, docIDs)
	if err != nil {
		return nil, err
	}

	shared := make(map[int64]int)
	attrs := make(map[int64]common.Entity)
	counted := make(map[[2]int64]struct{}, len(occurrences))
	for _, occ := range occurrences {
		if occ.Entity.ID == entityID {
			continue
		}
		key := [2]int64{occ.DocumentID, occ.Entity.ID}
		if _, dup := counted[key]; dup {
			continue
		}
		counted[key] = struct{}{}
		shared[occ.Entity.ID]++
		attrs[occ.Entity.ID] = occ.Entity
	}

	related := make([]common.RelatedEntity, 0, len(shared))
	for id, count := range shared {
		related = append(related, common.RelatedEntity{Entity: attrs[id], SharedDocuments: count})
	}
	sort.Slice(related, func(i, j int) bool {
		if related[i].SharedDocuments != related[j].SharedDocuments {
			return related[i].SharedDocuments > related[j].SharedDocuments
		}
		if related[i].Entity.Importance != related[j].Entity.Importance {
			return related[i].Entity.Importance > related[j].Entity.Importance
		}
		if related[i].Entity.Name != related[j].Entity.Name {
			return related[i].Entity.Name < related[j].Entity.Name
		}
		return related[i].Entity.ID < related[j].Entity.ID
	})
	if len(related) > maxRelatedEntities {
		related = related[:maxRelatedEntities]
	}
	return related, nil
}

// nodeSize maps importance 0..10 onto a display size of 10..40.
func nodeSize(importance float64) int {
	return int(math.Round(10 + 3*importance))
}
