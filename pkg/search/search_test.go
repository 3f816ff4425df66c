package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/docketlabs/docket/backend/pkg/access"
	"github.com/docketlabs/docket/backend/pkg/ai"
	"github.com/docketlabs/docket/backend/pkg/common"
	"github.com/docketlabs/docket/backend/pkg/store"
)

type fakeStore struct {
	accessible []int64
	docs       []common.Document
	texts      map[int64]string
	embeddings map[int64][]float32
	entities   map[int64][]common.Entity

	lastDocumentIDs []int64
	lastFilter      store.DocumentFilter
}

func (f *fakeStore) ListAccessibleDocumentIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f.accessible, nil
}

func (f *fakeStore) ListDocuments(ctx context.Context, ids []int64, filter store.DocumentFilter) ([]common.Document, error) {
	f.lastDocumentIDs = ids
	f.lastFilter = filter

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	out := []common.Document{}
	for _, d := range f.docs {
		if _, ok := wanted[d.ID]; !ok {
			continue
		}
		if filter.UploadedAfter != nil && d.UploadedAt.Before(*filter.UploadedAfter) {
			continue
		}
		if filter.UploadedBefore != nil && d.UploadedAt.After(*filter.UploadedBefore) {
			continue
		}
		if len(filter.MimeTypes) > 0 {
			match := false
			for _, mt := range filter.MimeTypes {
				if d.MimeType == mt {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.FolderID != nil {
			if d.FolderID == nil || *d.FolderID != *filter.FolderID {
				continue
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.Before(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) GetIndexedTexts(ctx context.Context, docs []common.Document) (map[int64]string, error) {
	out := map[int64]string{}
	for _, d := range docs {
		if !d.Indexed() {
			continue
		}
		if text, ok := f.texts[d.ID]; ok {
			out[d.ID] = text
		}
	}
	return out, nil
}

func (f *fakeStore) ListDocumentEmbeddings(ctx context.Context, ids []int64) (map[int64][]float32, error) {
	out := map[int64][]float32{}
	for _, id := range ids {
		if vec, ok := f.embeddings[id]; ok {
			out[id] = vec
		}
	}
	return out, nil
}

func (f *fakeStore) ListTopEntities(ctx context.Context, documentIDs []int64, filter store.EntityFilter) ([]common.Entity, error) {
	return nil, nil
}

func (f *fakeStore) ListEntityMentions(ctx context.Context, documentIDs []int64) ([]common.EntityMention, error) {
	return nil, nil
}

func (f *fakeStore) ListDocumentEntities(ctx context.Context, documentIDs []int64) ([]store.DocumentEntity, error) {
	out := []store.DocumentEntity{}
	for _, id := range documentIDs {
		for _, e := range f.entities[id] {
			out = append(out, store.DocumentEntity{DocumentID: id, Entity: e})
		}
	}
	return out, nil
}

func (f *fakeStore) GetEntity(ctx context.Context, id int64) (common.Entity, error) {
	return common.Entity{}, common.ErrNotFound
}

func (f *fakeStore) ListEntityDocuments(ctx context.Context, entityID int64, documentIDs []int64) ([]common.DocumentMention, error) {
	return nil, nil
}

func (f *fakeStore) GetClusterSet(ctx context.Context, userID int64) (*store.ClusterSet, error) {
	return nil, nil
}

func (f *fakeStore) ReplaceClusterSet(ctx context.Context, userID int64, clusters []common.Cluster) ([]common.Cluster, error) {
	return clusters, nil
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return f.vec, f.err
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeEmbedder) ResetMetrics() {}

func (f *fakeEmbedder) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testDoc(id int64, name string, uploaded time.Time) common.Document {
	return common.Document{
		ID:             id,
		OwnerID:        1,
		Name:           name,
		MimeType:       "application/pdf",
		IndexedTextKey: fmt.Sprintf("texts/%d.txt", id),
		UploadedAt:     uploaded,
	}
}

func newTestRanker(s *fakeStore, embedder ai.EmbeddingClient) *Ranker {
	return NewRanker(NewRankerParams{
		Store:    s,
		Access:   access.NewFilter(s),
		Embedder: embedder,
	}, WithClock(func() time.Time { return testNow }))
}

func resultIDs(page common.SearchPage) []int64 {
	ids := make([]int64, 0, len(page.Results))
	for _, r := range page.Results {
		ids = append(ids, r.Document.ID)
	}
	return ids
}

func TestRanker_EmptyQuery(t *testing.T) {
	r := newTestRanker(&fakeStore{}, nil)

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := r.Search(context.Background(), 1, Request{Query: query})
		if !errors.Is(err, common.ErrInvalidArgument) {
			t.Fatalf("query %q: expected ErrInvalidArgument, got %v", query, err)
		}
	}
}

func TestRanker_NoAccessibleDocuments(t *testing.T) {
	r := newTestRanker(&fakeStore{}, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "contract"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 0 || len(page.Results) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
	if page.Page != 1 || page.PageSize != defaultPageSize {
		t.Fatalf("expected normalized paging, got page=%d size=%d", page.Page, page.PageSize)
	}
}

func TestRanker_LexicalRanking(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -5)
	s := &fakeStore{
		accessible: []int64{1, 2},
		docs: []common.Document{
			testDoc(1, "engagement letter", uploaded),
			testDoc(2, "merger agreement", uploaded),
		},
		texts: map[int64]string{
			1: "Smith sent one letter regarding payment",
			2: "Smith agreement names Smith Industries and binds Smith personally",
		},
		entities: map[int64][]common.Entity{
			1: {{ID: 10, Name: "Smith", Type: common.EntityTypePerson, Importance: 8}},
			2: {
				{ID: 10, Name: "Smith", Type: common.EntityTypePerson, Importance: 8},
				{ID: 11, Name: "Jones", Type: common.EntityTypePerson, Importance: 6},
			},
		},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "Smith"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected both documents to match, got total %d", page.Total)
	}

	ids := resultIDs(page)
	if ids[0] != 2 || ids[1] != 1 {
		t.Fatalf("expected higher term frequency to rank first, got order %v", ids)
	}
	if page.Results[0].Score <= page.Results[1].Score {
		t.Fatalf("expected strictly decreasing scores, got %v then %v",
			page.Results[0].Score, page.Results[1].Score)
	}
}

func TestRanker_InaccessibleDocumentsNeverReturned(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -1)
	s := &fakeStore{
		accessible: []int64{1},
		docs: []common.Document{
			testDoc(1, "mine", uploaded),
			testDoc(99, "someone elses", uploaded),
		},
		texts: map[int64]string{
			1:  "settlement agreement draft",
			99: "settlement agreement draft",
		},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "settlement"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, id := range resultIDs(page) {
		if id == 99 {
			t.Fatal("inaccessible document leaked into results")
		}
	}
	if page.Total != 1 {
		t.Fatalf("expected total 1, got %d", page.Total)
	}
	for _, id := range s.lastDocumentIDs {
		if id == 99 {
			t.Fatal("inaccessible document id reached the store query")
		}
	}
}

func TestRanker_PaginationConsistency(t *testing.T) {
	s := &fakeStore{
		accessible: []int64{1, 2, 3, 4, 5},
		texts:      map[int64]string{},
	}
	for i := int64(1); i <= 5; i++ {
		s.docs = append(s.docs, testDoc(i, fmt.Sprintf("doc %d", i), testNow.AddDate(0, 0, -int(i))))
		s.texts[i] = fmt.Sprintf("lease contract number %d with annex", i)
	}
	r := newTestRanker(s, nil)

	seen := map[int64]struct{}{}
	for pageNum := 1; pageNum <= 3; pageNum++ {
		page, err := r.Search(context.Background(), 1, Request{Query: "contract", Page: pageNum, PageSize: 2})
		if err != nil {
			t.Fatalf("page %d: expected no error, got %v", pageNum, err)
		}
		if page.Total != 5 {
			t.Fatalf("page %d: expected total 5, got %d", pageNum, page.Total)
		}
		for _, id := range resultIDs(page) {
			if _, dup := seen[id]; dup {
				t.Fatalf("document %d appeared on more than one page", id)
			}
			seen[id] = struct{}{}
		}
	}
	if len(seen) != 5 {
		t.Fatalf("expected pages to cover all 5 documents, got %d", len(seen))
	}

	beyond, err := r.Search(context.Background(), 1, Request{Query: "contract", Page: 9, PageSize: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(beyond.Results) != 0 || beyond.Total != 5 {
		t.Fatalf("expected empty page beyond end with stable total, got %+v", beyond)
	}
}

func TestRanker_TotalReflectsPostFilters(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -3)
	s := &fakeStore{
		accessible: []int64{1, 2, 3},
		docs: []common.Document{
			testDoc(1, "a", uploaded),
			testDoc(2, "b", uploaded),
			testDoc(3, "c", uploaded),
		},
		texts: map[int64]string{
			1: "invoice for services",
			2: "invoice for goods",
			3: "invoice for rent",
		},
		entities: map[int64][]common.Entity{
			1: {{ID: 1, Name: "Acme", Type: common.EntityTypeOrganization, Importance: 5}},
			2: {{ID: 2, Name: "Smith", Type: common.EntityTypePerson, Importance: 5}},
		},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{
		Query:       "invoice",
		EntityTypes: []common.EntityType{common.EntityTypeOrganization},
		Page:        1,
		PageSize:    1,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected total to count only post-filter survivors, got %d", page.Total)
	}
	if ids := resultIDs(page); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected only the organization document, got %v", ids)
	}
}

func TestRanker_MinAvgImportanceFilter(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -3)
	s := &fakeStore{
		accessible: []int64{1, 2, 3},
		docs: []common.Document{
			testDoc(1, "a", uploaded),
			testDoc(2, "b", uploaded),
			testDoc(3, "c", uploaded),
		},
		texts: map[int64]string{
			1: "deposition transcript",
			2: "deposition summary",
			3: "deposition notes",
		},
		entities: map[int64][]common.Entity{
			1: {
				{ID: 1, Name: "Smith", Type: common.EntityTypePerson, Importance: 2},
				{ID: 2, Name: "Jones", Type: common.EntityTypePerson, Importance: 4},
			},
			2: {{ID: 3, Name: "Acme", Type: common.EntityTypeOrganization, Importance: 8}},
		},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "deposition", MinAvgImportance: 5})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ids := resultIDs(page); len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("expected only the high-importance document, got %v", ids)
	}
}

func TestRanker_FolderAndMimeFiltersForwarded(t *testing.T) {
	folderA := int64(7)
	uploaded := testNow.AddDate(0, 0, -2)

	inFolder := testDoc(1, "in folder", uploaded)
	inFolder.FolderID = &folderA
	outside := testDoc(2, "outside", uploaded)

	s := &fakeStore{
		accessible: []int64{1, 2},
		docs:       []common.Document{inFolder, outside},
		texts: map[int64]string{
			1: "retainer agreement",
			2: "retainer agreement",
		},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "retainer", FolderID: &folderA})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ids := resultIDs(page); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected only the folder-scoped document, got %v", ids)
	}
	if s.lastFilter.FolderID == nil || *s.lastFilter.FolderID != folderA {
		t.Fatalf("expected folder filter to reach the store, got %+v", s.lastFilter)
	}
}

func TestRanker_RecencyOrdersEqualLexicalScores(t *testing.T) {
	s := &fakeStore{
		accessible: []int64{1, 2},
		docs: []common.Document{
			testDoc(1, "old", testNow.AddDate(0, 0, -60)),
			testDoc(2, "fresh", testNow.AddDate(0, 0, -1)),
		},
		texts: map[int64]string{
			1: "annual report fiscal summary",
			2: "annual report fiscal summary",
		},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "report"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ids := resultIDs(page); len(ids) != 2 || ids[0] != 2 {
		t.Fatalf("expected the fresher document first, got %v", ids)
	}
}

func TestRanker_EntityBoostOrdersEqualText(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -5)
	s := &fakeStore{
		accessible: []int64{1, 2},
		docs: []common.Document{
			testDoc(1, "plain", uploaded),
			testDoc(2, "boosted", uploaded),
		},
		texts: map[int64]string{
			1: "correspondence with Meridian regarding terms",
			2: "correspondence with Meridian regarding terms",
		},
		entities: map[int64][]common.Entity{
			2: {{ID: 5, Name: "Meridian", Type: common.EntityTypeOrganization, Importance: 9}},
		},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "Meridian"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ids := resultIDs(page); len(ids) != 2 || ids[0] != 2 {
		t.Fatalf("expected the entity-boosted document first, got %v", ids)
	}
}

func TestRanker_SemanticFindsZeroLexicalDocument(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -2)
	semanticOnly := testDoc(3, "scanned exhibit", uploaded)
	semanticOnly.IndexedTextKey = ""

	s := &fakeStore{
		accessible: []int64{1, 3},
		docs: []common.Document{
			testDoc(1, "merger memo", uploaded),
			semanticOnly,
		},
		texts: map[int64]string{
			1: "merger timeline and obligations",
		},
		embeddings: map[int64][]float32{
			3: {1, 0, 0},
		},
	}
	embedder := &fakeEmbedder{vec: []float32{1, 0, 0}}

	withSemantic, err := newTestRanker(s, embedder).Search(context.Background(), 1,
		Request{Query: "merger", UseSemantic: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if withSemantic.Degraded {
		t.Fatal("expected healthy semantic stage, got degraded page")
	}
	ids := resultIDs(withSemantic)
	if len(ids) != 2 {
		t.Fatalf("expected semantic stage to admit the unindexed document, got %v", ids)
	}

	withoutSemantic, err := newTestRanker(s, embedder).Search(context.Background(), 1,
		Request{Query: "merger", UseSemantic: false})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ids := resultIDs(withoutSemantic); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected lexical-only mode to exclude the unindexed document, got %v", ids)
	}
}

func TestRanker_DegradesWhenEmbeddingFails(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -2)
	s := &fakeStore{
		accessible: []int64{1},
		docs:       []common.Document{testDoc(1, "memo", uploaded)},
		texts:      map[int64]string{1: "arbitration clause analysis"},
		embeddings: map[int64][]float32{1: {1, 0}},
	}
	embedder := &fakeEmbedder{err: errors.New("upstream timeout")}
	r := newTestRanker(s, embedder)

	page, err := r.Search(context.Background(), 1, Request{Query: "arbitration", UseSemantic: true})
	if err != nil {
		t.Fatalf("expected degraded success, got error %v", err)
	}
	if !page.Degraded {
		t.Fatal("expected page to be flagged degraded")
	}
	if page.Total != 1 {
		t.Fatalf("expected lexical results to survive the degrade, got total %d", page.Total)
	}
}

func TestRanker_PageSizeCapped(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -2)
	s := &fakeStore{
		accessible: []int64{1},
		docs:       []common.Document{testDoc(1, "memo", uploaded)},
		texts:      map[int64]string{1: "brief on damages"},
	}
	r := NewRanker(NewRankerParams{
		Store:       s,
		Access:      access.NewFilter(s),
		MaxPageSize: 25,
	}, WithClock(func() time.Time { return testNow }))

	page, err := r.Search(context.Background(), 1, Request{Query: "damages", PageSize: 500})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.PageSize != 25 {
		t.Fatalf("expected page size capped at 25, got %d", page.PageSize)
	}
}

func TestRanker_StopwordOnlyQuery(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -2)
	s := &fakeStore{
		accessible: []int64{1},
		docs:       []common.Document{testDoc(1, "memo", uploaded)},
		texts:      map[int64]string{1: "the court filed the order"},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "pursuant to the order"})
	if err != nil {
		t.Fatalf("expected no error for stopword-only query, got %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected no matches for stopword-only query, got %d", page.Total)
	}
}

func TestRanker_SnippetContainsQueryToken(t *testing.T) {
	uploaded := testNow.AddDate(0, 0, -2)
	s := &fakeStore{
		accessible: []int64{1},
		docs:       []common.Document{testDoc(1, "memo", uploaded)},
		texts: map[int64]string{
			1: "This memorandum summarizes the indemnification obligations assumed by the buyer at closing.",
		},
	}
	r := newTestRanker(s, nil)

	page, err := r.Search(context.Background(), 1, Request{Query: "indemnification"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(page.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(page.Results))
	}
	if snippet := page.Results[0].Snippet; snippet == "" {
		t.Fatal("expected a snippet around the query hit")
	}
}
