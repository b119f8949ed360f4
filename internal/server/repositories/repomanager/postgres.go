package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/server/migrations"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/revocations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories and
// applies the embedded goose migrations.
type PostgresRepositoryManager struct {
	opts options
}

// Credentials returns a credentials.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

// Revocations returns the configured ledger, or a PostgreSQL one bound to db.
func (m *PostgresRepositoryManager) Revocations(db dbx.DBTX) revocations.Repository {
	if m.opts.ledger != nil {
		return m.opts.ledger
	}
	return revocations.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager(opts ...Option) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{opts: applyOptions(opts)}
}
