package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/repomanager"
)

// RevocationService records token values that must no longer be accepted.
// Records are kept regardless of the token's own expiry.
type RevocationService struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
}

func NewRevocationService(tx dbx.Transactor, m repomanager.RepositoryManager) *RevocationService {
	return &RevocationService{tx: tx, repomanager: m}
}

// Revoke adds token to the ledger. Revoking a token twice is not an error.
func (s *RevocationService) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if _, err := s.repomanager.Revocations(s.tx.Conn()).Insert(ctx, token, expiresAt); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

func (s *RevocationService) IsRevoked(ctx context.Context, token string) (bool, error) {
	ok, err := s.repomanager.Revocations(s.tx.Conn()).Exists(ctx, token)
	if err != nil {
		return false, fmt.Errorf("error checking revocation: %w", err)
	}
	return ok, nil
}
