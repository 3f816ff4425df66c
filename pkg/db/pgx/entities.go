package pgx

import (
	"context"
	"time"
)

const getEntity = `
SELECT id, name, type, importance
FROM entities
WHERE id = $1;
`

func (q *Queries) GetEntity(ctx context.Context, id int64) (Entity, error) {
	var e Entity
	err := q.db.QueryRow(ctx, getEntity, id).Scan(&e.ID, &e.Name, &e.Type, &e.Importance)
	return e, err
}

const listTopEntities = `
SELECT DISTINCT e.id, e.name, e.type, e.importance
FROM entities e
JOIN document_entities de ON de.entity_id = e.id
WHERE de.document_id = ANY($1::bigint[])
  AND (cardinality($2::text[]) = 0 OR e.type = ANY($2))
  AND e.importance >= $3
ORDER BY e.importance DESC, e.name ASC, e.id ASC
LIMIT $4;
`

type ListTopEntitiesParams struct {
	DocumentIDs   []int64
	Types         []string
	MinImportance float64
	EntityLimit   int32
}

// ListTopEntities returns the most important entities occurring in the
// given documents, filtered by type and minimum importance.
func (q *Queries) ListTopEntities(ctx context.Context, arg ListTopEntitiesParams) ([]Entity, error) {
	types := arg.Types
	if types == nil {
		types = []string{}
	}
	rows, err := q.db.Query(ctx, listTopEntities, arg.DocumentIDs, types, arg.MinImportance, arg.EntityLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Entity
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Importance); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const listEntityMentions = `
SELECT document_id, entity_id
FROM document_entities
WHERE document_id = ANY($1::bigint[])
ORDER BY document_id ASC, entity_id ASC;
`

type ListEntityMentionsRow struct {
	DocumentID int64
	EntityID   int64
}

func (q *Queries) ListEntityMentions(ctx context.Context, documentIDs []int64) ([]ListEntityMentionsRow, error) {
	rows, err := q.db.Query(ctx, listEntityMentions, documentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListEntityMentionsRow
	for rows.Next() {
		var r ListEntityMentionsRow
		if err := rows.Scan(&r.DocumentID, &r.EntityID); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listEntityMentionsDetailed = `
SELECT de.document_id, e.id, e.name, e.type, e.importance
FROM document_entities de
JOIN entities e ON e.id = de.entity_id
WHERE de.document_id = ANY($1::bigint[])
ORDER BY de.document_id ASC, e.id ASC;
`

type ListEntityMentionsDetailedRow struct {
	DocumentID int64
	EntityID   int64
	Name       string
	Type       string
	Importance float64
}

// ListEntityMentionsDetailed joins mentions with the entity attributes in
// one round trip, for scoring and label building over a candidate set.
func (q *Queries) ListEntityMentionsDetailed(ctx context.Context, documentIDs []int64) ([]ListEntityMentionsDetailedRow, error) {
	rows, err := q.db.Query(ctx, listEntityMentionsDetailed, documentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListEntityMentionsDetailedRow
	for rows.Next() {
		var r ListEntityMentionsDetailedRow
		if err := rows.Scan(&r.DocumentID, &r.EntityID, &r.Name, &r.Type, &r.Importance); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listEntityDocuments = `
SELECT d.id, d.name, d.uploaded_at, COALESCE(de.context, '')
FROM document_entities de
JOIN documents d ON d.id = de.document_id
WHERE de.entity_id = $1 AND de.document_id = ANY($2::bigint[])
ORDER BY d.uploaded_at DESC, d.id DESC;
`

type ListEntityDocumentsParams struct {
	EntityID    int64
	DocumentIDs []int64
}

type ListEntityDocumentsRow struct {
	DocumentID int64
	Name       string
	UploadedAt time.Time
	Context    string
}

// ListEntityDocuments returns the documents out of the given set that
// mention the entity, newest first, with the extraction context.
func (q *Queries) ListEntityDocuments(ctx context.Context, arg ListEntityDocumentsParams) ([]ListEntityDocumentsRow, error) {
	rows, err := q.db.Query(ctx, listEntityDocuments, arg.EntityID, arg.DocumentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListEntityDocumentsRow
	for rows.Next() {
		var r ListEntityDocumentsRow
		if err := rows.Scan(&r.DocumentID, &r.Name, &r.UploadedAt, &r.Context); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
