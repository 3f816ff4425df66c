// Package timing records per-query latency samples. The samples feed
// capacity planning and the degraded flag tracks how often search runs
// without its embedding collaborator.
package timing

import (
	"context"
	"time"

	pgdb "github.com/docketlabs/docket/backend/pkg/db/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatSearch   = "search"
	StatMindmap  = "mindmap"
	StatClusters = "clusters"
)

func RecordQueryStat(
	ctx context.Context,
	conn *pgxpool.Pool,
	statType string,
	userID int64,
	duration time.Duration,
	degraded bool,
) error {
	q := pgdb.New(conn)

	return q.InsertQueryStat(ctx, pgdb.InsertQueryStatParams{
		StatType:   statType,
		UserID:     userID,
		DurationMs: duration.Milliseconds(),
		Degraded:   degraded,
	})
}
