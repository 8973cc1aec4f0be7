package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store handles generation_runs persistence.
type Store struct {
	db DB
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Insert appends one run to the ledger.
func (s *Store) Insert(ctx context.Context, run Run) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO generation_runs (id, started_at, duration_ms, day_count, outcome, upstream_status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), run.StartedAt, run.Duration.Milliseconds(), run.DayCount, string(run.Outcome), run.UpstreamStatus)
	return err
}

// CountByOutcome returns per-outcome run counts for runs started at or after since,
// ordered by outcome name.
func (s *Store) CountByOutcome(ctx context.Context, since time.Time) ([]OutcomeCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT outcome, COUNT(*) FROM generation_runs
		WHERE started_at >= $1
		GROUP BY outcome ORDER BY outcome
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutcomeCount
	for rows.Next() {
		var (
			outcome string
			count   int64
		)
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		out = append(out, OutcomeCount{Outcome: Outcome(outcome), Count: count})
	}
	return out, rows.Err()
}
