package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/cryptox"
	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/logging"
	"github.com/dmitrijs2005/authtokens/internal/server/auth"
	"github.com/dmitrijs2005/authtokens/internal/server/models"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/memory"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/revocations"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessTTL  = 15 * time.Minute
	testRefreshTTL = 7 * 24 * time.Hour
)

var errStoreDown = errors.New("store unavailable")

// fakeClock is a settable time source shared by every component of an engine.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type engine struct {
	clock       *fakeClock
	store       *memory.Store
	manager     repomanager.RepositoryManager
	codec       *auth.Codec
	creds       *CredentialStore
	refresh     *RefreshTokenService
	revocations *RevocationService
	admission   *Admission
	facade      *AuthTokensService
}

type engineConfig struct {
	strategy string
	pageSize int
	manager  func(*memory.Store) repomanager.RepositoryManager
}

func newEngine(t *testing.T, cfg engineConfig) *engine {
	t.Helper()

	e := &engine{clock: newFakeClock(), store: memory.NewStore()}
	if cfg.manager != nil {
		e.manager = cfg.manager(e.store)
	} else {
		e.manager = repomanager.NewInMemoryRepositoryManager(e.store)
	}

	codec, err := auth.NewCodec([]byte("test-signing-secret"), "HS512", "", testAccessTTL, auth.WithClock(e.clock.Now))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	e.codec = codec

	e.creds, err = NewCredentialStore(
		e.manager,
		&cryptox.BcryptHasher{Cost: bcrypt.MinCost},
		cryptox.NewFingerprinter([]byte("test-fingerprint-key")),
		cfg.strategy,
		cfg.pageSize,
	)
	if err != nil {
		t.Fatalf("NewCredentialStore: %v", err)
	}

	log := logging.Nop()
	e.refresh = NewRefreshTokenService(e.store, e.creds, testRefreshTTL, 16, log, WithClock(e.clock.Now))
	e.revocations = NewRevocationService(e.store, e.manager)
	e.admission = NewAdmission(e.codec, e.revocations, e.refresh, log, WithClock(e.clock.Now))
	e.facade = NewAuthTokensService(e.codec, e.refresh, e.revocations)
	return e
}

// credentialCount returns how many credentials exist for subject.
func (e *engine) credentialCount(t *testing.T, subject string) int {
	t.Helper()
	repo := e.manager.Credentials(nil)
	n, after := 0, ""
	for {
		page, err := repo.ListPage(context.Background(), after, 100)
		if err != nil {
			t.Fatalf("ListPage: %v", err)
		}
		for _, c := range page {
			if c.Subject == subject {
				n++
			}
		}
		if len(page) < 100 {
			return n
		}
		after = page[len(page)-1].ID
	}
}

// flakyCredentials wraps a repository and fails selected operations.
type flakyCredentials struct {
	credentials.Repository
	failUpsert bool
	failReads  bool
}

func (f *flakyCredentials) Upsert(ctx context.Context, c *models.RefreshCredential) error {
	if f.failUpsert {
		return errStoreDown
	}
	return f.Repository.Upsert(ctx, c)
}

func (f *flakyCredentials) ExistsActive(ctx context.Context, subject string, now time.Time) (bool, error) {
	if f.failReads {
		return false, errStoreDown
	}
	return f.Repository.ExistsActive(ctx, subject, now)
}

func (f *flakyCredentials) FindByFingerprint(ctx context.Context, fp string) (*models.RefreshCredential, error) {
	if f.failReads {
		return nil, errStoreDown
	}
	return f.Repository.FindByFingerprint(ctx, fp)
}

type flakyLedger struct {
	revocations.Repository
	failReads  bool
	failInsert bool
}

func (f *flakyLedger) Exists(ctx context.Context, token string) (bool, error) {
	if f.failReads {
		return false, errStoreDown
	}
	return f.Repository.Exists(ctx, token)
}

func (f *flakyLedger) Insert(ctx context.Context, token string, exp time.Time) (bool, error) {
	if f.failInsert {
		return false, errStoreDown
	}
	return f.Repository.Insert(ctx, token, exp)
}

// flakyManager hands out the flaky wrappers around memory repositories.
type flakyManager struct {
	creds  *flakyCredentials
	ledger *flakyLedger
}

func newFlakyManager(s *memory.Store) *flakyManager {
	return &flakyManager{
		creds:  &flakyCredentials{Repository: memory.NewCredentialRepository(s)},
		ledger: &flakyLedger{Repository: memory.NewRevocationRepository(s)},
	}
}

func (m *flakyManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *flakyManager) Credentials(dbx.DBTX) credentials.Repository { return m.creds }

func (m *flakyManager) Revocations(dbx.DBTX) revocations.Repository { return m.ledger }
