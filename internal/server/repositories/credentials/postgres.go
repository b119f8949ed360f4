package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, c *models.RefreshCredential) error {
	query := `
		INSERT INTO refresh_credentials (id, subject, secret_digest, fingerprint, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subject) DO UPDATE
		SET id = EXCLUDED.id,
		    secret_digest = EXCLUDED.secret_digest,
		    fingerprint = EXCLUDED.fingerprint,
		    expires_at = EXCLUDED.expires_at,
		    created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.Subject, c.SecretDigest, c.Fingerprint, c.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*models.RefreshCredential, error) {
	query := `
		SELECT id, subject, secret_digest, fingerprint, expires_at, created_at
		FROM refresh_credentials
		WHERE fingerprint = $1
	`
	c := &models.RefreshCredential{}
	err := r.db.QueryRowContext(ctx, query, fingerprint).
		Scan(&c.ID, &c.Subject, &c.SecretDigest, &c.Fingerprint, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListPage(ctx context.Context, afterID string, limit int) ([]*models.RefreshCredential, error) {
	query := `
		SELECT id, subject, secret_digest, fingerprint, expires_at, created_at
		FROM refresh_credentials
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	page := make([]*models.RefreshCredential, 0, limit)
	for rows.Next() {
		c := &models.RefreshCredential{}
		if err := rows.Scan(&c.ID, &c.Subject, &c.SecretDigest, &c.Fingerprint, &c.ExpiresAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		page = append(page, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return page, nil
}

func (r *PostgresRepository) ExistsActive(ctx context.Context, subject string, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_credentials
			WHERE subject = $1 AND expires_at > $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, subject, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) DeleteBySubject(ctx context.Context, subject string) error {
	query := `
		DELETE FROM refresh_credentials
		WHERE subject = $1
	`
	if _, err := r.db.ExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	query := `
		DELETE FROM refresh_credentials
		WHERE id = $1
	`
	n, err := dbx.ExecAffected(ctx, r.db, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
