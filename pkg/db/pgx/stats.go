package pgx

import "context"

const insertQueryStat = `
INSERT INTO query_stats (stat_type, user_id, duration_ms, degraded)
VALUES ($1, $2, $3, $4);
`

type InsertQueryStatParams struct {
	StatType   string
	UserID     int64
	DurationMs int64
	Degraded   bool
}

func (q *Queries) InsertQueryStat(ctx context.Context, arg InsertQueryStatParams) error {
	_, err := q.db.Exec(ctx, insertQueryStat,
		arg.StatType, arg.UserID, arg.DurationMs, arg.Degraded)
	return err
}
