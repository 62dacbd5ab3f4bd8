package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/ajith05/url-shortener/internal/config"
	"github.com/ajith05/url-shortener/internal/server"
	"github.com/ajith05/url-shortener/internal/shortener"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Repo    shortener.Repository
	Server  *server.Server
	Handler *shortener.Handler

	closeStore func()
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := NewLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"store", cfg.Database.Driver,
		"code_strategy", cfg.Shortener.Strategy,
	)

	repo, closeStore, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// The schema must exist before the first request.
	if err := repo.InitSchema(ctx); err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Info("schema ready")

	svc := NewService(cfg, repo, logger)
	handler := shortener.NewHandler(shortener.HandlerConfig{
		Service: svc,
		Logger:  logger,
		BaseURL: cfg.Server.BaseURL,
	})

	srv := server.New(cfg, logger, handler)

	logger.Info("application initialized",
		"addr", cfg.Server.Addr(),
		"base_url", cfg.Server.BaseURL,
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Repo:       repo,
		Server:     srv,
		Handler:    handler,
		closeStore: closeStore,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown releases the mapping store.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.closeStore != nil {
		a.closeStore()
		a.Logger.Info("store closed")
	}
	return nil
}

// NewService builds the shortener service from configuration.
func NewService(cfg *config.Config, repo shortener.Repository, logger *slog.Logger) shortener.Service {
	return shortener.NewService(repo, &shortener.ServiceConfig{
		Strategy:    shortener.Strategy(cfg.Shortener.Strategy),
		MaxAttempts: cfg.Shortener.MaxAttempts,
		Logger:      logger,
	})
}

// OpenRepository connects to the configured mapping store. The returned
// func releases it.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (shortener.Repository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		logger.Info("opening sqlite store", "path", cfg.Database.SQLitePath)

		repo, closeFn, err := shortener.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := closeFn(); err != nil {
				logger.Warn("failed to close sqlite store", "error", err)
			}
		}, nil

	default:
		pool, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return shortener.NewRepository(pool), pool.Close, nil
	}
}

// LoadEnv loads a .env file outside production. A missing file is not an error.
func LoadEnv() {
	env := os.Getenv("APP_ENV")
	if env == "" || env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
}

// NewLogger creates a JSON logger at the given level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// connectDatabase establishes a pool to the PostgreSQL database.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	logger.Info("connecting to database",
		"host", poolConfig.ConnConfig.Host,
		"port", poolConfig.ConnConfig.Port,
		"database", poolConfig.ConnConfig.Database,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	return pool, nil
}
