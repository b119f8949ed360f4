package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokensService_AliceRotationScenario(t *testing.T) {
	e := newEngine(t, engineConfig{})
	ctx := context.Background()

	first, err := e.facade.CreateAuthTokens(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, first.AccessToken)
	require.NotEmpty(t, first.RefreshToken)

	second, err := e.facade.RefreshAuthTokens(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	for _, token := range []string{first.AccessToken, second.AccessToken} {
		subject, err := e.codec.DecodeSubject(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	}

	_, err = e.facade.RefreshAuthTokens(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidCredential)
}

func TestAuthTokensService_BobLogoutScenario(t *testing.T) {
	e := newEngine(t, engineConfig{})
	ctx := context.Background()

	pair, err := e.facade.CreateAuthTokens(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, e.refresh.InvalidateBySubject(ctx, "bob"))

	res, err := e.admission.Decide(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, res.Decision.Rejected())

	revoked, err := e.revocations.IsRevoked(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthTokensService_RefreshAccessTokenKeepsRefreshToken(t *testing.T) {
	e := newEngine(t, engineConfig{})
	ctx := context.Background()

	pair, err := e.facade.CreateAuthTokens(ctx, "alice")
	require.NoError(t, err)

	reissued, err := e.facade.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, reissued.AccessToken)
	assert.Empty(t, reissued.RefreshToken)

	again, err := e.facade.RefreshAuthTokens(ctx, pair.RefreshToken)
	require.NoError(t, err, "refresh token is still usable after an access-only refresh")
	assert.NotEmpty(t, again.RefreshToken)

	_, err = e.facade.RefreshAccessToken(ctx, "bogus")
	assert.ErrorIs(t, err, common.ErrInvalidCredential)
}

func TestAuthTokensService_DeleteAuthTokens(t *testing.T) {
	e := newEngine(t, engineConfig{})
	ctx := context.Background()

	pair, err := e.facade.CreateAuthTokens(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, e.facade.DeleteAuthTokens(ctx, pair.AccessToken))

	revoked, err := e.revocations.IsRevoked(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = e.facade.RefreshAuthTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidCredential)

	res, err := e.admission.Decide(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, RejectRevoked, res.Decision)

	require.NoError(t, e.facade.DeleteAuthTokens(ctx, pair.AccessToken), "logout is idempotent")

	err = e.facade.DeleteAuthTokens(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, common.ErrMalformedToken)
}

func TestAuthTokensService_NewLoginEndsPreviousSession(t *testing.T) {
	e := newEngine(t, engineConfig{})
	ctx := context.Background()

	first, err := e.facade.CreateAuthTokens(ctx, "alice")
	require.NoError(t, err)
	_, err = e.facade.CreateAuthTokens(ctx, "alice")
	require.NoError(t, err)

	_, err = e.facade.RefreshAuthTokens(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidCredential)
	assert.Equal(t, 1, e.credentialCount(t, "alice"))
}
