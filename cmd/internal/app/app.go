// Package app wires the taskboard server runtime: config, logging, stores,
// auth, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/cmd/identity"
	authapi "taskboard/cmd/internal/auth/api"
	"taskboard/cmd/internal/auth/session"
	"taskboard/cmd/internal/lists"
)

// stores groups the persistence implementations behind one lifecycle handle.
type stores struct {
	users    identity.Store
	sessions session.Store
	boards   lists.Store

	pool *pgxpool.Pool
}

func (s *stores) dbEnabled() bool { return s.pool != nil }

func (s *stores) close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// App is the taskboard server runtime.
type App struct {
	cfg Config
	log Logger

	st      *stores
	metrics *Metrics

	auth   *authapi.Handler
	boards *lists.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	st, err := newStores(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		st.close()
		return nil, fmt.Errorf("app: session config: %w", err)
	}

	tokens, err := session.NewHS256Manager(sessCfg)
	if err != nil {
		st.close()
		return nil, err
	}

	sessionSvc := session.NewService(sessCfg, st.users, st.sessions, tokens)

	auth, err := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), st.users, sessionSvc)
	if err != nil {
		st.close()
		return nil, err
	}

	boards, err := lists.NewHandler(log, st.boards)
	if err != nil {
		st.close()
		return nil, err
	}

	var metrics *Metrics
	if cfg.MetricsEnabled {
		metrics = NewMetrics()
	}

	return &App{
		cfg:     cfg,
		log:     log,
		st:      st,
		metrics: metrics,
		auth:    auth,
		boards:  boards,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.st.pool, a.st.dbEnabled(), a.metrics, a.auth, a.boards)

	var handler http.Handler = mux
	if a.metrics != nil {
		handler = a.metrics.WithMetrics(handler)
	}
	handler = WithCORS(handler, a.cfg, a.log)
	handler = WithSecurityHeaders(handler)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.st.dbEnabled())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.st.close()

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStores decides between Postgres-backed persistence and in-memory dev
// stores, and runs migrations when a database is configured.
func newStores(ctx context.Context, cfg Config, log Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return &stores{
			users:    identity.NewMemoryStore(),
			sessions: session.NewMemoryStore(),
			boards:   lists.NewMemoryStore(),
		}, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pool, cfg.DBSchema, log); err != nil {
			pool.Close()
			return nil, err
		}
	}

	users, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, err
	}
	sessions, err := session.NewPostgresStore(pool, session.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, err
	}
	boards, err := lists.NewPostgresStore(pool, lists.WithSchema(cfg.DBSchema))
	if err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("db.enabled.postgres_store", "schema", cfg.DBSchema)

	return &stores{
		users:    users,
		sessions: sessions,
		boards:   boards,
		pool:     pool,
	}, nil
}
