package pgx

import (
	"context"
	"time"
)

const getLatestClusterSet = `
SELECT set_id, created_at
FROM document_cluster_sets
WHERE user_id = $1
ORDER BY created_at DESC, set_id DESC
LIMIT 1;
`

type GetLatestClusterSetRow struct {
	SetID     string
	CreatedAt time.Time
}

// GetLatestClusterSet returns the newest persisted cluster generation for
// the user. A generation with zero clusters is still a generation.
// pgx.ErrNoRows means no set has ever been computed.
func (q *Queries) GetLatestClusterSet(ctx context.Context, userID int64) (GetLatestClusterSetRow, error) {
	var r GetLatestClusterSetRow
	err := q.db.QueryRow(ctx, getLatestClusterSet, userID).Scan(&r.SetID, &r.CreatedAt)
	return r, err
}

const insertClusterSet = `
INSERT INTO document_cluster_sets (set_id, user_id)
VALUES ($1, $2)
RETURNING created_at;
`

type InsertClusterSetParams struct {
	SetID  string
	UserID int64
}

func (q *Queries) InsertClusterSet(ctx context.Context, arg InsertClusterSetParams) (time.Time, error) {
	var createdAt time.Time
	err := q.db.QueryRow(ctx, insertClusterSet, arg.SetID, arg.UserID).Scan(&createdAt)
	return createdAt, err
}

const listClustersBySet = `
SELECT id, public_id, user_id, set_id, name, description, keywords, created_at
FROM document_clusters
WHERE user_id = $1 AND set_id = $2
ORDER BY id ASC;
`

type ListClustersBySetParams struct {
	UserID int64
	SetID  string
}

func (q *Queries) ListClustersBySet(ctx context.Context, arg ListClustersBySetParams) ([]DocumentCluster, error) {
	rows, err := q.db.Query(ctx, listClustersBySet, arg.UserID, arg.SetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DocumentCluster
	for rows.Next() {
		var c DocumentCluster
		if err := rows.Scan(&c.ID, &c.PublicID, &c.UserID, &c.SetID, &c.Name, &c.Description, &c.Keywords, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const listClusterMembers = `
SELECT m.cluster_id, m.document_id, d.name, m.similarity, m.position
FROM document_cluster_members m
JOIN documents d ON d.id = m.document_id
WHERE m.cluster_id = ANY($1::bigint[])
ORDER BY m.cluster_id ASC, m.position ASC;
`

type ListClusterMembersRow struct {
	ClusterID  int64
	DocumentID int64
	Name       string
	Similarity float64
	Position   int32
}

// ListClusterMembers resolves members against the documents table, so
// members whose document has been deleted since the set was computed fall
// away on read.
func (q *Queries) ListClusterMembers(ctx context.Context, clusterIDs []int64) ([]ListClusterMembersRow, error) {
	rows, err := q.db.Query(ctx, listClusterMembers, clusterIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListClusterMembersRow
	for rows.Next() {
		var r ListClusterMembersRow
		if err := rows.Scan(&r.ClusterID, &r.DocumentID, &r.Name, &r.Similarity, &r.Position); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteUserClusterSets = `
DELETE FROM document_cluster_sets
WHERE user_id = $1;
`

// DeleteUserClusterSets removes every cluster generation for the user.
// Clusters and members go with their set via cascade.
func (q *Queries) DeleteUserClusterSets(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx, deleteUserClusterSets, userID)
	return err
}

const insertCluster = `
INSERT INTO document_clusters (public_id, user_id, set_id, name, description, keywords)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at;
`

type InsertClusterParams struct {
	PublicID    string
	UserID      int64
	SetID       string
	Name        string
	Description string
	Keywords    []string
}

type InsertClusterRow struct {
	ID        int64
	CreatedAt time.Time
}

func (q *Queries) InsertCluster(ctx context.Context, arg InsertClusterParams) (InsertClusterRow, error) {
	keywords := arg.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	var r InsertClusterRow
	err := q.db.QueryRow(ctx, insertCluster,
		arg.PublicID, arg.UserID, arg.SetID, arg.Name, arg.Description, keywords).Scan(&r.ID, &r.CreatedAt)
	return r, err
}

const insertClusterMembers = `
INSERT INTO document_cluster_members (cluster_id, document_id, similarity, position)
SELECT $1, unnest($2::bigint[]), unnest($3::double precision[]), unnest($4::int[]);
`

type InsertClusterMembersParams struct {
	ClusterID    int64
	DocumentIDs  []int64
	Similarities []float64
	Positions    []int32
}

func (q *Queries) InsertClusterMembers(ctx context.Context, arg InsertClusterMembersParams) error {
	_, err := q.db.Exec(ctx, insertClusterMembers,
		arg.ClusterID, arg.DocumentIDs, arg.Similarities, arg.Positions)
	return err
}
