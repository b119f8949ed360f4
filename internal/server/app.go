// Package server wires configuration, storage, services and the HTTP
// transport into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/authtokens/internal/cryptox"
	"github.com/dmitrijs2005/authtokens/internal/dbx"
	"github.com/dmitrijs2005/authtokens/internal/logging"
	"github.com/dmitrijs2005/authtokens/internal/server/auth"
	"github.com/dmitrijs2005/authtokens/internal/server/config"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/memory"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authtokens/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/authtokens/internal/server/rest"
	"github.com/dmitrijs2005/authtokens/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *rest.HTTPServer

	// closers release storage connections on shutdown, in reverse order.
	closers []io.Closer
}

// NewApp builds every component from cfg. Storage connections are opened
// and, when configured, migrations are applied before it returns.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	return newApp(ctx, cfg, logging.NewJSONLogger(os.Stdout, cfg.LogLevel))
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (_ *App, err error) {
	app := &App{config: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	tx, manager, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := cryptox.NewHasher(cfg.HashScheme, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	accessTTL, err := cfg.AccessTokenTTL()
	if err != nil {
		return nil, err
	}
	refreshTTL, err := cfg.RefreshTokenTTL()
	if err != nil {
		return nil, err
	}
	codec, err := auth.NewCodec([]byte(cfg.SecretKey), cfg.SigningAlgorithm, cfg.Issuer, accessTTL)
	if err != nil {
		return nil, err
	}

	creds, err := services.NewCredentialStore(
		manager,
		hasher,
		cryptox.NewFingerprinter(cfg.EffectiveFingerprintKey()),
		cfg.LookupStrategy,
		cfg.LookupPageSize,
	)
	if err != nil {
		return nil, err
	}
	refresh := services.NewRefreshTokenService(tx, creds, refreshTTL, cfg.RefreshTokenByteLength, logger)
	ledger := services.NewRevocationService(tx, manager)
	admission := services.NewAdmission(codec, ledger, refresh, logger)
	facade := services.NewAuthTokensService(codec, refresh, ledger)

	app.server = rest.NewHTTPServer(cfg.HTTPAddr, logger, facade, admission, cfg.ShutdownTimeout)
	return app, nil
}

// initStorage opens the configured backends and returns the transaction
// runner and repository manager the services share.
func (app *App) initStorage(ctx context.Context) (dbx.Transactor, repomanager.RepositoryManager, error) {
	cfg := app.config

	var opts []repomanager.Option
	switch cfg.EffectiveRevocationBackend() {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		app.closers = append(app.closers, rdb)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis init error: %w", err)
		}
		opts = append(opts, repomanager.WithRevocationLedger(revocations.NewRedisRepository(rdb, cfg.RedisKeyPrefix)))
	case config.BackendMemory:
		if cfg.StorageBackend != config.BackendMemory {
			opts = append(opts, repomanager.WithRevocationLedger(memory.NewRevocationRepository(memory.NewStore())))
		}
	}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		store := memory.NewStore()
		app.logger.Warn(ctx, "using in-memory storage; state is lost on restart")
		return store, repomanager.NewInMemoryRepositoryManager(store, opts...), nil

	case config.BackendPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		app.closers = append(app.closers, db)
		if err := db.PingContext(ctx); err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}

		m := repomanager.NewPostgresRepositoryManager(opts...)
		if cfg.RunMigrations {
			if err := m.RunMigrations(ctx, db); err != nil {
				return nil, nil, fmt.Errorf("migrations error: %w", err)
			}
		}
		return dbx.NewSQLTransactor(db, nil), m, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases storage connections.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	return errors.Join(runErr, app.Close())
}

// Close releases storage connections. It is safe to call more than once.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
