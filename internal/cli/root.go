package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ajith05/url-shortener/internal/app"
	"github.com/ajith05/url-shortener/internal/config"
	"github.com/ajith05/url-shortener/internal/shortener"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Store is an open mapping store plus the settings it was opened with.
type Store struct {
	Repo   shortener.Repository
	Config *config.Config
	Logger *slog.Logger
	Close  func()
}

// Opener connects to the mapping store.
type Opener func(ctx context.Context) (*Store, error)

// RootOptions holds global flags and dependencies for all commands.
type RootOptions struct {
	Format string // "json" | "text"
	Open   Opener
}

// NewRootCommand creates the root command for linkctl. A nil open uses the
// store selected by the environment.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = OpenFromEnv
	}
	opts := &RootOptions{Open: open}

	cmd := &cobra.Command{
		Use:   "linkctl",
		Short: "Administer the URL shortener store",
		Long: `Administer the URL shortener store directly, without the HTTP server.

The store is selected with the same environment variables the server reads
(STORE_DRIVER, DATABASE_URL, SQLITE_PATH, CODE_STRATEGY, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewInitSchemaCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))

	return cmd
}

// OpenFromEnv loads configuration from the environment (and .env outside
// production) and opens the configured store. Logs go to stderr.
func OpenFromEnv(ctx context.Context) (*Store, error) {
	app.LoadEnv()

	cfg := &config.Config{}
	if err := config.LoadCore(cfg); err != nil {
		return nil, err
	}

	logger := app.NewLogger(os.Stderr, cfg.App.LogLevel)

	repo, closeStore, err := app.OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Store{
		Repo:   repo,
		Config: cfg,
		Logger: logger,
		Close:  closeStore,
	}, nil
}

// withStore opens the store, runs fn and closes the store again.
func withStore(ctx context.Context, opts *RootOptions, fn func(*Store) error) error {
	store, err := opts.Open(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	if store.Close != nil {
		defer store.Close()
	}
	return fn(store)
}

// withSchema is withStore for commands that read or write links. The schema
// is created first so a fresh store works without a separate init-schema.
func withSchema(ctx context.Context, opts *RootOptions, fn func(*Store) error) error {
	return withStore(ctx, opts, func(s *Store) error {
		if err := s.Repo.InitSchema(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to initialize schema", err)
		}
		return fn(s)
	})
}
