package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/dmitrijs2005/authtokens/internal/cryptox"
	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/server/models"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Lookup strategies for CredentialStore.
const (
	// LookupFingerprint finds the candidate row by its keyed fingerprint and
	// then confirms it with the slow hash.
	LookupFingerprint = "fingerprint"
	// LookupScan pages through every stored digest.
	LookupScan = "scan"
)

// DefaultLookupPageSize is the page size of the scan strategy.
const DefaultLookupPageSize = 1000

// CredentialStore keeps refresh secrets in hashed form. All methods take the
// handle to run on, so callers decide the transaction boundary.
type CredentialStore struct {
	repomanager   repomanager.RepositoryManager
	hasher        cryptox.Hasher
	fingerprinter *cryptox.Fingerprinter
	strategy      string
	pageSize      int
}

func NewCredentialStore(
	m repomanager.RepositoryManager,
	hasher cryptox.Hasher,
	fingerprinter *cryptox.Fingerprinter,
	strategy string,
	pageSize int,
) (*CredentialStore, error) {
	switch strategy {
	case "":
		strategy = LookupFingerprint
	case LookupFingerprint, LookupScan:
	default:
		return nil, fmt.Errorf("unknown lookup strategy %q", strategy)
	}
	if pageSize <= 0 {
		pageSize = DefaultLookupPageSize
	}
	return &CredentialStore{
		repomanager:   m,
		hasher:        hasher,
		fingerprinter: fingerprinter,
		strategy:      strategy,
		pageSize:      pageSize,
	}, nil
}

// Create stores plaintext as the only credential of subject, replacing any
// previous one in the same statement.
func (s *CredentialStore) Create(ctx context.Context, db dbx.DBTX, subject, plaintext string, expiresAt time.Time) error {
	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("error hashing refresh token: %w", err)
	}
	c := &models.RefreshCredential{
		ID:           uuid.NewString(),
		Subject:      subject,
		SecretDigest: digest,
		Fingerprint:  s.fingerprinter.Fingerprint(plaintext),
		ExpiresAt:    expiresAt,
	}
	if err := s.repomanager.Credentials(db).Upsert(ctx, c); err != nil {
		return fmt.Errorf("error storing refresh token: %w", err)
	}
	return nil
}

// Lookup returns the credential whose digest matches plaintext. A miss is
// reported as (nil, false, nil). Expiry is not checked here.
func (s *CredentialStore) Lookup(ctx context.Context, db dbx.DBTX, plaintext string) (*models.RefreshCredential, bool, error) {
	if plaintext == "" {
		return nil, false, nil
	}
	if s.strategy == LookupScan {
		return s.scan(ctx, db, plaintext)
	}

	c, err := s.repomanager.Credentials(db).FindByFingerprint(ctx, s.fingerprinter.Fingerprint(plaintext))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error searching refresh token: %w", err)
	}
	if !s.hasher.Matches(plaintext, c.SecretDigest) {
		return nil, false, nil
	}
	return c, true, nil
}

func (s *CredentialStore) scan(ctx context.Context, db dbx.DBTX, plaintext string) (*models.RefreshCredential, bool, error) {
	repo := s.repomanager.Credentials(db)
	after := ""
	for {
		page, err := repo.ListPage(ctx, after, s.pageSize)
		if err != nil {
			return nil, false, fmt.Errorf("error scanning refresh tokens: %w", err)
		}
		for _, c := range page {
			if s.hasher.Matches(plaintext, c.SecretDigest) {
				return c, true, nil
			}
		}
		if len(page) < s.pageSize {
			return nil, false, nil
		}
		after = page[len(page)-1].ID
	}
}

func (s *CredentialStore) DeleteBySubject(ctx context.Context, db dbx.DBTX, subject string) error {
	if err := s.repomanager.Credentials(db).DeleteBySubject(ctx, subject); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// DeleteByPlaintext removes the credential matching plaintext, if any.
func (s *CredentialStore) DeleteByPlaintext(ctx context.Context, db dbx.DBTX, plaintext string) error {
	c, ok, err := s.Lookup(ctx, db, plaintext)
	if err != nil || !ok {
		return err
	}
	if _, err := s.repomanager.Credentials(db).DeleteByID(ctx, c.ID); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// deleteMatched removes exactly the row c and reports whether it was still
// there.
func (s *CredentialStore) deleteMatched(ctx context.Context, db dbx.DBTX, c *models.RefreshCredential) (bool, error) {
	deleted, err := s.repomanager.Credentials(db).DeleteByID(ctx, c.ID)
	if err != nil {
		return false, fmt.Errorf("error deleting refresh token: %w", err)
	}
	return deleted, nil
}

// HasActiveSession reports whether subject holds an unexpired credential.
func (s *CredentialStore) HasActiveSession(ctx context.Context, db dbx.DBTX, subject string, now time.Time) (bool, error) {
	ok, err := s.repomanager.Credentials(db).ExistsActive(ctx, subject, now)
	if err != nil {
		return false, fmt.Errorf("error checking session: %w", err)
	}
	return ok, nil
}
