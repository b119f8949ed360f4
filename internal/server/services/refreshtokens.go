package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/dmitrijs2005/authtokens/internal/cryptox"
	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/logging"
	"github.com/dmitrijs2005/authtokens/internal/server/models"
)

// DefaultRefreshTokenByteLength is the number of random bytes in a refresh
// secret before encoding.
const DefaultRefreshTokenByteLength = 16

// errRotationLost aborts a rotation transaction whose credential was taken
// by a concurrent writer.
var errRotationLost = errors.New("refresh token already consumed")

// RefreshTokenService manages the single refresh credential of each subject.
type RefreshTokenService struct {
	clock
	tx         dbx.Transactor
	store      *CredentialStore
	ttl        time.Duration
	byteLength int
	log        logging.Logger
}

func NewRefreshTokenService(
	tx dbx.Transactor,
	store *CredentialStore,
	ttl time.Duration,
	byteLength int,
	log logging.Logger,
	opts ...Option,
) *RefreshTokenService {
	if byteLength <= 0 {
		byteLength = DefaultRefreshTokenByteLength
	}
	return &RefreshTokenService{
		clock:      newClock(opts),
		tx:         tx,
		store:      store,
		ttl:        ttl,
		byteLength: byteLength,
		log:        log.With("module", "refreshtokens"),
	}
}

// Create issues a new refresh secret for subject, replacing any previous one.
func (s *RefreshTokenService) Create(ctx context.Context, subject string) (*models.IssuedRefreshToken, error) {
	if subject == "" {
		return nil, common.ErrEmptySubject
	}

	var issued *models.IssuedRefreshToken
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		issued, err = s.create(ctx, tx, subject)
		return err
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func (s *RefreshTokenService) create(ctx context.Context, tx dbx.DBTX, subject string) (*models.IssuedRefreshToken, error) {
	secret, err := cryptox.GenerateSecret(s.byteLength)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}
	expiresAt := s.now().Add(s.ttl)
	if err := s.store.Create(ctx, tx, subject, secret, expiresAt); err != nil {
		return nil, err
	}
	return &models.IssuedRefreshToken{Subject: subject, Secret: secret, ExpiresAt: expiresAt}, nil
}

// Rotate exchanges old for a new secret of the same subject. It returns
// false when old is unknown, expired or already rotated by a concurrent
// call; in every failure case the stored credential is left as it was.
func (s *RefreshTokenService) Rotate(ctx context.Context, old string) (*models.IssuedRefreshToken, bool, error) {
	c, ok, err := s.Peek(ctx, old)
	if err != nil || !ok {
		return nil, false, err
	}

	var issued *models.IssuedRefreshToken
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		deleted, err := s.store.deleteMatched(ctx, tx, c)
		if err != nil {
			return err
		}
		if !deleted {
			return errRotationLost
		}
		issued, err = s.create(ctx, tx, c.Subject)
		return err
	})
	if errors.Is(err, errRotationLost) {
		s.log.Info(ctx, "refresh token rotation lost to a concurrent writer", "subject", c.Subject)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return issued, true, nil
}

// Peek returns the live credential for secret without consuming it.
func (s *RefreshTokenService) Peek(ctx context.Context, secret string) (*models.RefreshCredential, bool, error) {
	c, ok, err := s.store.Lookup(ctx, s.tx.Conn(), secret)
	if err != nil || !ok {
		return nil, false, err
	}
	if c.Expired(s.now()) {
		return nil, false, nil
	}
	return c, true, nil
}

// InvalidateBySubject removes the credential of subject, if any.
func (s *RefreshTokenService) InvalidateBySubject(ctx context.Context, subject string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.store.DeleteBySubject(ctx, tx, subject)
	})
}

// InvalidateByPlaintext removes the credential matching secret, if any.
func (s *RefreshTokenService) InvalidateByPlaintext(ctx context.Context, secret string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.store.DeleteByPlaintext(ctx, tx, secret)
	})
}

// HasActiveSession reports whether subject currently holds a live credential.
func (s *RefreshTokenService) HasActiveSession(ctx context.Context, subject string) (bool, error) {
	return s.store.HasActiveSession(ctx, s.tx.Conn(), subject, s.now())
}
