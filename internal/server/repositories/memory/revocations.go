package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/server/models"
)

// RevocationRepository implements revocations.Repository on a Store.
// Ledger writes are not part of credential transactions.
type RevocationRepository struct {
	s *Store
}

func NewRevocationRepository(s *Store) *RevocationRepository {
	return &RevocationRepository{s: s}
}

func (r *RevocationRepository) Insert(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.revoked[token]; ok {
		return false, nil
	}
	r.s.revoked[token] = models.RevokedToken{TokenValue: token, ExpiresAt: expiresAt, RevokedAt: time.Now()}
	return true, nil
}

func (r *RevocationRepository) Exists(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.revoked[token]
	return ok, nil
}
