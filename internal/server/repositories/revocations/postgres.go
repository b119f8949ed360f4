package revocations

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	query := `
		INSERT INTO revoked_tokens (token_value, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_value) DO NOTHING
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, token, expiresAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, token string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens WHERE token_value = $1
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
