// Package services contains the token engine's business logic: refresh
// credential lifecycle, the revocation ledger, request admission and the
// facade used by the HTTP layer.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/dmitrijs2005/authtokens/internal/server/auth"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. RefreshToken is empty when only the access token was reissued.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthTokensService mints, renews and tears down token pairs.
type AuthTokensService struct {
	codec       *auth.Codec
	refresh     *RefreshTokenService
	revocations *RevocationService
}

func NewAuthTokensService(codec *auth.Codec, refresh *RefreshTokenService, revocations *RevocationService) *AuthTokensService {
	return &AuthTokensService{codec: codec, refresh: refresh, revocations: revocations}
}

// CreateAuthTokens starts a new session for an already authenticated
// subject, ending any previous one.
func (s *AuthTokensService) CreateAuthTokens(ctx context.Context, subject string) (*TokenPair, error) {
	issued, err := s.refresh.Create(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.pair(subject, issued.Secret)
}

// RefreshAuthTokens rotates refreshToken and returns a new pair. Unknown,
// expired or already rotated tokens yield common.ErrInvalidCredential.
func (s *AuthTokensService) RefreshAuthTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	issued, ok, err := s.refresh.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredential
	}
	return s.pair(issued.Subject, issued.Secret)
}

// RefreshAccessToken issues a new access token and leaves refreshToken in
// place.
func (s *AuthTokensService) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	c, ok, err := s.refresh.Peek(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInvalidCredential
	}
	return s.pair(c.Subject, "")
}

// DeleteAuthTokens ends the session accessToken belongs to: the access token
// is revoked and the subject's refresh credential removed.
func (s *AuthTokensService) DeleteAuthTokens(ctx context.Context, accessToken string) error {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return err
	}
	if err := s.revocations.Revoke(ctx, accessToken, claims.ExpiresAt); err != nil {
		return err
	}
	return s.refresh.InvalidateBySubject(ctx, claims.Subject)
}

func (s *AuthTokensService) pair(subject, refreshToken string) (*TokenPair, error) {
	access, err := s.codec.Issue(subject)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}
