package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/folio/internal/adapter/memstore"
	"github.com/heartmarshall/folio/internal/adapter/postgres"
	"github.com/heartmarshall/folio/internal/adapter/postgres/account"
	"github.com/heartmarshall/folio/internal/adapter/sqlite"
	"github.com/heartmarshall/folio/internal/adapter/system"
	"github.com/heartmarshall/folio/internal/adapter/token"
	"github.com/heartmarshall/folio/internal/auth"
	"github.com/heartmarshall/folio/internal/capability"
	"github.com/heartmarshall/folio/internal/config"
	"github.com/heartmarshall/folio/internal/ledger"
	"github.com/heartmarshall/folio/internal/service/marketplace"
	"github.com/heartmarshall/folio/internal/service/minter"
	"github.com/heartmarshall/folio/internal/service/platform"
	"github.com/heartmarshall/folio/internal/telemetry"
	"github.com/heartmarshall/folio/internal/transport/middleware"
	"github.com/heartmarshall/folio/internal/transport/rest"
)

// backend is an opened account store.
type backend struct {
	store ledger.Store
	tx    ledger.TxManager
	ping  func(ctx context.Context) error
	close func()
}

func (b backend) Ping(ctx context.Context) error { return b.ping(ctx) }

// Run is the application entry point. It loads configuration, opens the
// configured account store, wires the services and serves HTTP until ctx is
// cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("store", cfg.Store.Backend),
	)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("shutdown tracing", slog.String("error", err.Error()))
		}
	}()

	db, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.close()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	handler := newHandler(cfg, db, limiter, logger)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store.Backend)) {
	case config.BackendPostgres:
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return backend{}, fmt.Errorf("migrate database: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return backend{}, fmt.Errorf("connect to database: %w", err)
		}
		repo := account.New(pool)
		return backend{
			store: repo,
			tx:    postgres.NewTxManager(pool),
			ping:  repo.Ping,
			close: pool.Close,
		}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return backend{}, err
		}
		return backend{
			store: store,
			tx:    store,
			ping:  store.Ping,
			close: func() { _ = store.Close() },
		}, nil

	case config.BackendMemory:
		store := memstore.New()
		return backend{store: store, tx: store, ping: store.Ping, close: func() {}}, nil
	}
	return backend{}, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// newHandler wires the programs, services and HTTP handlers over db.
func newHandler(cfg *config.Config, db backend, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	tokens := token.New(db.store)
	sys := system.New(db.store, db.tx)

	market := marketplace.NewService(logger, db.store, db.tx)
	nfts := minter.NewService(logger, db.store, tokens, db.tx)
	publishing := platform.NewService(logger, db.store, market, nfts, tokens, sys, db.tx, platform.Config{
		MarketplaceName:     cfg.Platform.MarketplaceName,
		FeeBasisPoints:      cfg.Platform.FeeBasisPoints,
		ReviewPolicy:        capability.Policy(strings.ToLower(strings.TrimSpace(cfg.Platform.ReviewPolicy))),
		ReputationIncrement: cfg.Platform.ReputationIncrement,
	})

	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.ChallengeTTL)

	return rest.NewRouter(rest.Handlers{
		Health:      rest.NewHealthHandler(db, publishing, Version),
		Auth:        rest.NewAuthHandler(auth.NewSessions(jwt), logger),
		Platform:    rest.NewPlatformHandler(publishing, logger),
		Minter:      rest.NewMinterHandler(nfts, logger),
		Marketplace: rest.NewMarketplaceHandler(market, sys, logger),
	}, jwt, rest.Options{
		CORS:            cfg.CORS,
		Limiter:         limiter,
		LoginPerMinute:  cfg.RateLimit.LoginPerMinute,
		WritesPerMinute: cfg.RateLimit.WritesPerMinute,
	}, logger)
}
