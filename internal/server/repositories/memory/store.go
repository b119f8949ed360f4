// Package memory is a process-local storage backend for development and
// tests. It offers the same repository contracts as the PostgreSQL backend.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/server/models"
)

// Store holds both record sets and implements dbx.Transactor.
//
// Transactions are serialized and credential writes made inside a failed
// transaction are undone. Credential mutations are expected to run inside
// WithTx; reads may run anywhere.
type Store struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	credentials map[string]models.RefreshCredential // by id
	subjects    map[string]string                   // subject -> id
	revoked     map[string]models.RevokedToken
}

func NewStore() *Store {
	return &Store{
		credentials: make(map[string]models.RefreshCredential),
		subjects:    make(map[string]string),
		revoked:     make(map[string]models.RevokedToken),
	}
}

var _ dbx.Transactor = (*Store)(nil)

// WithTx runs fn under the transaction lock. The tx handle passed to fn is
// nil: memory repositories ignore it.
func (s *Store) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	creds, subjects := s.snapshot()

	defer func() {
		if p := recover(); p != nil {
			s.restore(creds, subjects)
			panic(p)
		}
		if err != nil {
			s.restore(creds, subjects)
		}
	}()

	return fn(ctx, nil)
}

// Conn returns nil; memory repositories do not use a connection handle.
func (s *Store) Conn() dbx.DBTX {
	return nil
}

func (s *Store) snapshot() (map[string]models.RefreshCredential, map[string]string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.credentials), maps.Clone(s.subjects)
}

func (s *Store) restore(creds map[string]models.RefreshCredential, subjects map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials = creds
	s.subjects = subjects
}
