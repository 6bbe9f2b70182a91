package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-session-service/internal/domain"
)

// ResultStore appends completed-session records to the results table. The
// details list travels as JSONB next to the scalar summary columns.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Append(ctx context.Context, record domain.ResultRecord) error {
	details, err := json.Marshal(record.Details)
	if err != nil {
		return fmt.Errorf("marshal result details: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO results (id, username, completed_at, total, correct, remaining_seconds, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.Username, record.CompletedAt, record.Total, record.Correct, record.RemainingSeconds, details,
	)
	if err != nil {
		return fmt.Errorf("insert result record: %w", err)
	}
	return nil
}
