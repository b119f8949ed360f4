package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/memory"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/revocations"
)

// InMemoryRepositoryManager vends repositories over a single memory.Store.
// The DBTX handles passed in are ignored.
type InMemoryRepositoryManager struct {
	store *memory.Store
	opts  options
}

func NewInMemoryRepositoryManager(store *memory.Store, opts ...Option) *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: store, opts: applyOptions(opts)}
}

// RunMigrations is a no-op: the memory store has no schema.
func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Credentials(dbx.DBTX) credentials.Repository {
	return memory.NewCredentialRepository(m.store)
}

func (m *InMemoryRepositoryManager) Revocations(dbx.DBTX) revocations.Repository {
	if m.opts.ledger != nil {
		return m.opts.ledger
	}
	return memory.NewRevocationRepository(m.store)
}
