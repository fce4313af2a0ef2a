package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/JonMunkholm/gradebook/internal/auth"
	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/JonMunkholm/gradebook/internal/database"
	"github.com/JonMunkholm/gradebook/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// runtime is what one command works with. Commands open it, use it and
// close it, so a database connection never outlives the command.
type runtime struct {
	cfg     *config.Config
	pool    *pgxpool.Pool
	service *core.Service
	users   *auth.Service

	// schema creates the tables. Nil for in-memory runtimes.
	schema func(ctx context.Context) error
}

// Close releases the connection pool, if any.
func (rt *runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
}

// openFunc builds a runtime. withDB false means an in-memory store.
type openFunc func(ctx context.Context, cfg *config.Config, withDB bool) (*runtime, error)

// loadConfig reads .env (or envFile), loads the configuration and sets up
// logging. debug forces the debug log level.
func loadConfig(envFile string, debug bool) (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Overload(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Logging.Level = "debug"
	}

	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}

// openRuntime connects to PostgreSQL when withDB is set and wires the
// services on top of the pool.
func openRuntime(ctx context.Context, cfg *config.Config, withDB bool) (*runtime, error) {
	if !withDB {
		return memoryRuntime(cfg)
	}

	pool, err := connect(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &runtime{
		cfg:     cfg,
		pool:    pool,
		service: core.NewService(core.NewPgStore(pool), cfg),
		users:   auth.NewService(auth.NewPgRepository(pool), tokens, cfg.Auth.MinPasswordLength),
		schema: func(ctx context.Context) error {
			return database.Migrate(ctx, pool)
		},
	}, nil
}

// memoryRuntime backs the services with in-memory stores. Nothing
// survives the process.
func memoryRuntime(cfg *config.Config) (*runtime, error) {
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &runtime{
		cfg:     cfg,
		service: core.NewService(core.NewMemStore(), cfg),
		users:   auth.NewService(auth.NewMemRepository(), tokens, cfg.Auth.MinPasswordLength),
	}, nil
}

// connect opens and pings a pool configured from cfg.
func connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Debug("connected to database", "name", poolConfig.ConnConfig.Database, "host", poolConfig.ConnConfig.Host)
	return pool, nil
}

// migrate creates the schema if it does not exist. Migrate is idempotent,
// so every database-backed command runs it.
func (rt *runtime) migrate(ctx context.Context) error {
	if rt.schema == nil {
		return nil
	}
	if err := rt.schema(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
