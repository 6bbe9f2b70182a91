package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-session-service/internal/domain"
)

// CredentialSource resolves usernames to stored password hashes from the
// users table.
type CredentialSource struct {
	pool *pgxpool.Pool
}

func NewCredentialSource(pool *pgxpool.Pool) *CredentialSource {
	return &CredentialSource{pool: pool}
}

func (s *CredentialSource) Lookup(ctx context.Context, username string) (string, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT password_hash FROM users WHERE username=$1`, username).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrUnknownUser
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	return hash, nil
}
