package pgx

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"
)

const listAccessibleDocumentIDs = `
SELECT d.id
FROM documents d
WHERE d.owner_id = $1
UNION
SELECT s.document_id
FROM document_shares s
WHERE s.user_id = $1;
`

// ListAccessibleDocumentIDs returns the ids of every document the user owns
// or has been granted a share on. Unknown users simply match nothing.
func (q *Queries) ListAccessibleDocumentIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := q.db.Query(ctx, listAccessibleDocumentIDs, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	return items, rows.Err()
}

const listDocumentsByIDs = `
SELECT id, owner_id, folder_id, name, mime_type, COALESCE(indexed_text_key, ''), uploaded_at
FROM documents
WHERE id = ANY($1::bigint[])
ORDER BY uploaded_at ASC, id ASC;
`

func (q *Queries) ListDocumentsByIDs(ctx context.Context, ids []int64) ([]Document, error) {
	rows, err := q.db.Query(ctx, listDocumentsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.FolderID, &d.Name, &d.MimeType, &d.IndexedTextKey, &d.UploadedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const listDocumentsFiltered = `
SELECT id, owner_id, folder_id, name, mime_type, COALESCE(indexed_text_key, ''), uploaded_at
FROM documents
WHERE id = ANY($1::bigint[])
  AND ($2::timestamptz IS NULL OR uploaded_at >= $2)
  AND ($3::timestamptz IS NULL OR uploaded_at <= $3)
  AND (cardinality($4::text[]) = 0 OR mime_type = ANY($4))
  AND ($5::bigint IS NULL OR folder_id = $5)
ORDER BY uploaded_at ASC, id ASC;
`

type ListDocumentsFilteredParams struct {
	DocumentIDs    []int64
	UploadedAfter  *time.Time
	UploadedBefore *time.Time
	MimeTypes      []string
	FolderID       *int64
}

// ListDocumentsFiltered narrows a candidate id set by upload window, mime
// types and folder. Empty filter values match everything.
func (q *Queries) ListDocumentsFiltered(ctx context.Context, arg ListDocumentsFilteredParams) ([]Document, error) {
	mimeTypes := arg.MimeTypes
	if mimeTypes == nil {
		mimeTypes = []string{}
	}
	rows, err := q.db.Query(ctx, listDocumentsFiltered,
		arg.DocumentIDs, arg.UploadedAfter, arg.UploadedBefore, mimeTypes, arg.FolderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.FolderID, &d.Name, &d.MimeType, &d.IndexedTextKey, &d.UploadedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const listDocumentEmbeddings = `
SELECT id, embedding
FROM documents
WHERE id = ANY($1::bigint[]) AND embedding IS NOT NULL;
`

type ListDocumentEmbeddingsRow struct {
	DocumentID int64
	Embedding  pgvector.Vector
}

// ListDocumentEmbeddings returns the stored embedding per document.
// Documents without one are omitted, callers treat them as unembedded.
func (q *Queries) ListDocumentEmbeddings(ctx context.Context, ids []int64) ([]ListDocumentEmbeddingsRow, error) {
	rows, err := q.db.Query(ctx, listDocumentEmbeddings, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListDocumentEmbeddingsRow
	for rows.Next() {
		var r ListDocumentEmbeddingsRow
		if err := rows.Scan(&r.DocumentID, &r.Embedding); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
