// Package search ranks a user's accessible documents against a free-text
// query. Scoring blends lexical TF-IDF similarity, optional semantic
// similarity from stored embeddings, upload recency and a boost for
// important entities whose name appears in the query. All filtering happens
// before pagination, so the reported total always matches the full filtered
// list.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/docketlabs/docket/backend/pkg/access"
	"github.com/docketlabs/docket/backend/pkg/ai"
	"github.com/docketlabs/docket/backend/pkg/common"
	"github.com/docketlabs/docket/backend/pkg/logger"
	"github.com/docketlabs/docket/backend/pkg/store"
)

const defaultPageSize = 10

// Weights are the blend coefficients for the four scoring signals.
type Weights struct {
	Lexical  float64
	Semantic float64
	Recency  float64
	Entity   float64
}

// DefaultWeights favor lexical relevance, with semantic similarity second
// and recency and entity importance as mild nudges.
var DefaultWeights = Weights{
	Lexical:  0.5,
	Semantic: 0.3,
	Recency:  0.1,
	Entity:   0.1,
}

// Request describes one search call. Query is required; every other field
// narrows or pages the result.
type Request struct {
	Query            string
	UploadedAfter    *time.Time
	UploadedBefore   *time.Time
	MimeTypes        []string
	FolderID         *int64
	EntityTypes      []common.EntityType
	MinAvgImportance float64
	Page             int
	PageSize         int
	UseSemantic      bool
}

// Ranker executes search requests over a document store. It is stateless
// between calls and safe for concurrent use.
type Ranker struct {
	store        store.DocumentStore
	access       *access.Filter
	embedder     ai.EmbeddingClient
	weights      Weights
	halfLifeDays float64
	maxPageSize  int
	now          func() time.Time
}

// NewRankerParams configures a Ranker. Embedder may be nil, which disables
// the semantic stage entirely. Zero-valued Weights, RecencyHalfLifeDays and
// MaxPageSize fall back to defaults.
type NewRankerParams struct {
	Store               store.DocumentStore
	Access              *access.Filter
	Embedder            ai.EmbeddingClient
	Weights             Weights
	RecencyHalfLifeDays float64
	MaxPageSize         int
}

// Option customizes a Ranker beyond its params.
type Option func(*Ranker)

// WithClock overrides the time source used for recency decay.
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) {
		r.now = now
	}
}

// NewRanker creates a Ranker with the provided parameters.
func NewRanker(params NewRankerParams, opts ...Option) *Ranker {
	weights := params.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights
	}
	halfLife := params.RecencyHalfLifeDays
	if halfLife <= 0 {
		halfLife = 30
	}
	maxPageSize := params.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = 100
	}

	r := &Ranker{
		store:        params.Store,
		access:       params.Access,
		embedder:     params.Embedder,
		weights:      weights,
		halfLifeDays: halfLife,
		maxPageSize:  maxPageSize,
		now:          time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Search runs the full ranking pipeline for one user. An empty or
// whitespace query yields common.ErrInvalidArgument; an empty accessible
// set yields an empty page. Embedding failures never fail the call, they
// degrade it to lexical-only scoring and set Degraded on the page.
func (r *Ranker) Search(ctx context.Context, userID int64, req Request) (common.SearchPage, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return common.SearchPage{}, fmt.Errorf("search query must not be empty: %w", common.ErrInvalidArgument)
	}
	page, pageSize := r.normalizePaging(req.Page, req.PageSize)

	accessible, err := r.access.AccessibleDocumentIDs(ctx, userID)
	if err != nil {
		return common.SearchPage{}, err
	}

	docs := []common.Document{}
	if len(accessible) > 0 {
		docs, err = r.store.ListDocuments(ctx, store.SortedIDs(accessible), store.DocumentFilter{
			UploadedAfter:  req.UploadedAfter,
			UploadedBefore: req.UploadedBefore,
			MimeTypes:      req.MimeTypes,
			FolderID:       req.FolderID,
		})
		if err != nil {
			return common.SearchPage{}, err
		}
	}
	if len(docs) == 0 {
		return common.SearchPage{Results: []common.SearchResult{}, Page: page, PageSize: pageSize}, nil
	}

	texts, err := r.store.GetIndexedTexts(ctx, docs)
	if err != nil {
		return common.SearchPage{}, err
	}
	lexical := lexicalScores(query, docs, texts)

	semantic := map[int64]float64{}
	degraded := false
	if req.UseSemantic && r.embedder != nil {
		semantic, degraded, err = r.semanticScores(ctx, query, docs)
		if err != nil {
			return common.SearchPage{}, err
		}
	}

	// A document stays a candidate only when at least one content signal
	// matched; recency and entity boosts never admit a document on their
	// own.
	candidates := make([]common.Document, 0, len(docs))
	for _, d := range docs {
		if lexical[d.ID] > 0 || semantic[d.ID] > 0 {
			candidates = append(candidates, d)
		}
	}

	results, err := r.scoreAndFilter(ctx, candidates, req, query, lexical, semantic, texts)
	if err != nil {
		return common.SearchPage{}, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Document.UploadedAt.Equal(results[j].Document.UploadedAt) {
			return results[i].Document.UploadedAt.After(results[j].Document.UploadedAt)
		}
		return results[i].Document.ID > results[j].Document.ID
	})

	total := len(results)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return common.SearchPage{
		Results:  results[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Degraded: degraded,
	}, nil
}

func (r *Ranker) normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > r.maxPageSize {
		pageSize = r.maxPageSize
	}
	return page, pageSize
}

// scoreAndFilter applies the entity post-filters and computes the blended
// score for every surviving candidate. Entity data is fetched once for the
// whole candidate set.
func (r *Ranker) scoreAndFilter(ctx context.Context, candidates []common.Document, req Request, query string, lexical, semantic map[int64]float64, texts map[int64]string) ([]common.SearchResult, error) {
	if len(candidates) == 0 {
		return []common.SearchResult{}, nil
	}

	ids := make([]int64, 0, len(candidates))
	for _, d := range candidates {
		ids = append(ids, d.ID)
	}
	occurrences, err := r.store.ListDocumentEntities(ctx, ids)
	if err != nil {
		return nil, err
	}
	entitiesByDoc := make(map[int64][]common.Entity, len(candidates))
	for _, occ := range occurrences {
		entitiesByDoc[occ.DocumentID] = append(entitiesByDoc[occ.DocumentID], occ.Entity)
	}

	wantedTypes := make(map[common.EntityType]struct{}, len(req.EntityTypes))
	for _, t := range req.EntityTypes {
		wantedTypes[t] = struct{}{}
	}

	queryTokens := tokenize(query)
	now := r.now()

	results := make([]common.SearchResult, 0, len(candidates))
	for _, d := range candidates {
		entities := entitiesByDoc[d.ID]
		if !matchesEntityFilters(entities, wantedTypes, req.MinAvgImportance) {
			continue
		}

		score := r.weights.Lexical*lexical[d.ID] +
			r.weights.Semantic*semantic[d.ID] +
			r.weights.Recency*r.recency(now, d.UploadedAt) +
			r.weights.Entity*entityBoost(entities, queryTokens)

		results = append(results, common.SearchResult{
			Document: d,
			Score:    score,
			Snippet:  buildSnippet(texts[d.ID], queryTokens),
		})
	}
	return results, nil
}

func lexicalScores(query string, docs []common.Document, texts map[int64]string) map[int64]float64 {
	corpusIDs := make([]int64, 0, len(texts))
	corpus := make([]string, 0, len(texts))
	for _, d := range docs {
		if text, ok := texts[d.ID]; ok {
			corpusIDs = append(corpusIDs, d.ID)
			corpus = append(corpus, text)
		}
	}
	if len(corpus) == 0 {
		return map[int64]float64{}
	}

	index := newLexicalIndex(corpus)
	queryVec := index.vector(query)

	scores := make(map[int64]float64, len(corpus))
	for i, id := range corpusIDs {
		if s := dot(queryVec, index.vector(corpus[i])); s > 0 {
			scores[id] = s
		}
	}
	return scores
}

// semanticScores embeds the query and scores it against the stored document
// embeddings. A failing embedding call degrades the search instead of
// failing it; a failing store read is a real error.
func (r *Ranker) semanticScores(ctx context.Context, query string, docs []common.Document) (map[int64]float64, bool, error) {
	queryVec, err := r.embedder.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		logger.Warn("Search degraded to lexical-only scoring", "err", err)
		return map[int64]float64{}, true, nil
	}

	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	stored, err := r.store.ListDocumentEmbeddings(ctx, ids)
	if err != nil {
		return nil, false, err
	}

	scores := make(map[int64]float64, len(stored))
	for id, vec := range stored {
		if s := ai.Cosine(queryVec, vec); s > 0 {
			scores[id] = s
		}
	}
	return scores, false, nil
}

// recency decays from 1 toward 0 with document age, halving every
// halfLifeDays.
func (r *Ranker) recency(now time.Time, uploadedAt time.Time) float64 {
	ageDays := now.Sub(uploadedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Pow(0.5, ageDays/r.halfLifeDays)
}

// matchesEntityFilters applies the entity-type and minimum average
// importance post-filters to one document's entities.
func matchesEntityFilters(entities []common.Entity, wantedTypes map[common.EntityType]struct{}, minAvgImportance float64) bool {
	if len(wantedTypes) > 0 {
		found := false
		for _, e := range entities {
			if _, ok := wantedTypes[e.Type]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if minAvgImportance > 0 {
		if len(entities) == 0 {
			return false
		}
		sum := 0.0
		for _, e := range entities {
			sum += e.Importance
		}
		if sum/float64(len(entities)) < minAvgImportance {
			return false
		}
	}
	return true
}

// entityBoost is the strongest importance among entities whose name shares
// a token with the query, scaled to 0..1.
func entityBoost(entities []common.Entity, queryTokens []string) float64 {
	if len(entities) == 0 || len(queryTokens) == 0 {
		return 0
	}
	tokenSet := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		tokenSet[t] = struct{}{}
	}

	best := 0.0
	for _, e := range entities {
		for _, nameTok := range tokenize(e.Name) {
			if _, ok := tokenSet[nameTok]; ok {
				if boost := e.Importance / 10; boost > best {
					best = boost
				}
				break
			}
		}
	}
	return best
}
