package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/authtokens/internal/server/repositories/memory"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevocationService_RevokeIsIdempotent(t *testing.T) {
	e := newEngine(t, engineConfig{})
	ctx := context.Background()
	exp := e.clock.Now().Add(testAccessTTL)

	revoked, err := e.revocations.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, e.revocations.Revoke(ctx, "token-a", exp))
	require.NoError(t, e.revocations.Revoke(ctx, "token-a", exp))

	revoked, err = e.revocations.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = e.revocations.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked, "only the exact value is revoked")
}

func TestRevocationService_RecordsOutliveTokenExpiry(t *testing.T) {
	e := newEngine(t, engineConfig{})
	ctx := context.Background()

	require.NoError(t, e.revocations.Revoke(ctx, "token-a", e.clock.Now().Add(testAccessTTL)))
	e.clock.Advance(52 * testRefreshTTL)

	revoked, err := e.revocations.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationService_SeparateLedger(t *testing.T) {
	ledger := memory.NewRevocationRepository(memory.NewStore())
	e := newEngine(t, engineConfig{
		manager: func(s *memory.Store) repomanager.RepositoryManager {
			return repomanager.NewInMemoryRepositoryManager(s, repomanager.WithRevocationLedger(ledger))
		},
	})
	ctx := context.Background()

	require.NoError(t, e.revocations.Revoke(ctx, "token-a", e.clock.Now()))

	ok, err := ledger.Exists(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = memory.NewRevocationRepository(e.store).Exists(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok, "engine store must not receive ledger writes")
}

func TestRevocationService_StoreFailure(t *testing.T) {
	var fm *flakyManager
	e := newEngine(t, engineConfig{
		manager: func(s *memory.Store) repomanager.RepositoryManager {
			fm = newFlakyManager(s)
			return fm
		},
	})
	ctx := context.Background()

	fm.ledger.failInsert = true
	assert.ErrorIs(t, e.revocations.Revoke(ctx, "token-a", e.clock.Now()), errStoreDown)

	fm.ledger.failReads = true
	_, err := e.revocations.IsRevoked(ctx, "token-a")
	assert.ErrorIs(t, err, errStoreDown)
}
