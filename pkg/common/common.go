package common

import "time"

// EntityType classifies an extracted entity. The set mirrors what the
// extraction pipeline emits for legal documents.
type EntityType string

const (
	EntityTypePerson         EntityType = "person"
	EntityTypeOrganization   EntityType = "organization"
	EntityTypeLocation       EntityType = "location"
	EntityTypeDate           EntityType = "date"
	EntityTypeLegalReference EntityType = "legal_reference"
	EntityTypeCurrency       EntityType = "currency"
	EntityTypeOther          EntityType = "other"
)

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypePerson, EntityTypeOrganization, EntityTypeLocation,
		EntityTypeDate, EntityTypeLegalReference, EntityTypeCurrency, EntityTypeOther:
		return true
	}
	return false
}

// Document represents a stored document's metadata. The binary content and
// its extracted plain text live in object storage; IndexedTextKey points at
// the extracted text and is empty while ingestion has not finished.
type Document struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"owner_id"`
	FolderID       *int64    `json:"folder_id,omitempty"`
	Name           string    `json:"name"`
	MimeType       string    `json:"mime_type"`
	IndexedTextKey string    `json:"-"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// Indexed reports whether extracted text exists for the document.
func (d Document) Indexed() bool {
	return d.IndexedTextKey != ""
}

// Entity represents a named entity extracted from one or more documents:
// a person, organization, location, date, legal reference or monetary
// amount. Importance is the extraction pipeline's 0..10 relevance score.
type Entity struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Type       EntityType `json:"type"`
	Importance float64    `json:"importance"`
}

// EntityMention links an entity to a document it occurs in, together with
// the surrounding context captured at extraction time.
type EntityMention struct {
	DocumentID int64  `json:"document_id"`
	EntityID   int64  `json:"entity_id"`
	Context    string `json:"context,omitempty"`
}

// SearchResult is one ranked hit: the document, its blended relevance
// score and a snippet around the best query match.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
	Snippet  string   `json:"snippet,omitempty"`
}

// SearchPage is a page of search results. Total counts all matches after
// filtering, not just the page, so callers can render pagination.
type SearchPage struct {
	Results  []SearchResult `json:"results"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Degraded bool           `json:"degraded,omitempty"`
}

// GraphNode is an entity rendered in the mind map. Size is the display
// size derived from importance; Documents counts the accessible documents
// the entity occurs in.
type GraphNode struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Type       EntityType `json:"type"`
	Importance float64    `json:"importance"`
	Size       int        `json:"size"`
	Documents  int        `json:"documents"`
}

// GraphEdge connects two entities that co-occur in at least one document.
// Edges are undirected; Source always carries the smaller entity id.
// Weight is the number of distinct documents containing both entities.
type GraphEdge struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
	Weight int   `json:"weight"`
}

// EntityGraph is the co-occurrence graph over a user's accessible
// documents. Nodes without any edge are included.
type EntityGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// DocumentMention is a document an entity occurs in, with the extraction
// context for display.
type DocumentMention struct {
	DocumentID int64     `json:"document_id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
	Context    string    `json:"context,omitempty"`
}

// RelatedEntity is an entity ranked by how many documents it shares with
// the entity being inspected.
type RelatedEntity struct {
	Entity          Entity `json:"entity"`
	SharedDocuments int    `json:"shared_documents"`
}

// EntityDetail is the drill-down view of a single entity: the documents it
// occurs in and the entities it most frequently co-occurs with, all limited
// to the requesting user's accessible set.
type EntityDetail struct {
	Entity    Entity            `json:"entity"`
	Documents []DocumentMention `json:"documents"`
	Related   []RelatedEntity   `json:"related"`
}

// ClusterMember is a document inside a cluster. Similarity is the mean
// pairwise similarity to the other members at build time (1 for a cluster
// of one).
type ClusterMember struct {
	DocumentID int64   `json:"document_id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// Cluster is a persisted group of content-similar documents belonging to
// one user. Keywords are the top shared entities and double as the label.
type Cluster struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Keywords    []string        `json:"keywords"`
	Members     []ClusterMember `json:"members"`
	CreatedAt   time.Time       `json:"created_at"`
}
