// Package repomanager vends repository implementations for a storage backend
// and runs its schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/revocations"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	Revocations(db dbx.DBTX) revocations.Repository
}

// Option customizes a manager at construction time.
type Option func(*options)

type options struct {
	ledger revocations.Repository
}

// WithRevocationLedger makes Revocations return ledger regardless of the
// handle passed in, e.g. to keep the ledger in Redis while credentials live
// in PostgreSQL.
func WithRevocationLedger(ledger revocations.Repository) Option {
	return func(o *options) { o.ledger = ledger }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
