package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajith05/url-shortener/internal/app"
	"github.com/ajith05/url-shortener/internal/shortener"
)

// NewInitSchemaCommand creates the init-schema command.
func NewInitSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-schema",
		Short: "Create the urls table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			return withStore(cmd.Context(), rootOpts, func(s *Store) error {
				if err := s.Repo.InitSchema(cmd.Context()); err != nil {
					return out.Error("failed to initialize schema", err)
				}
				return out.Success("schema ready", map[string]string{
					"driver": s.Config.Database.Driver,
				})
			})
		},
	}
}

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	BaseURL string
}

// CreateResult is the JSON payload of a successful create.
type CreateResult struct {
	Code      string `json:"code"`
	URL       string `json:"url"`
	ShortLink string `json:"short_link,omitempty"`
	Existing  bool   `json:"existing"`
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <url>",
		Short: "Issue (or look up) the short code for a URL",
		Long: `Issue the short code for a URL, reusing the existing code when the same
URL was shortened before. The urls table is created if it is missing.

Example:
  linkctl create 'http://example.com/foo?x=1' --base-url https://sho.rt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "print the full short link under this origin")

	return cmd
}

func runCreate(cmd *cobra.Command, opts *CreateOptions, rawURL string) error {
	ctx := cmd.Context()
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	return withSchema(ctx, opts.RootOptions, func(s *Store) error {
		svc := app.NewService(s.Config, s.Repo, s.Logger)

		res, err := svc.Create(ctx, rawURL)
		if err != nil {
			return out.Error("failed to create short link", err)
		}

		result := CreateResult{
			Code:     res.Link.Code,
			URL:      res.Link.Tuple.String(),
			Existing: res.Existing,
		}
		text := result.Code
		if opts.BaseURL != "" {
			result.ShortLink = strings.TrimSuffix(opts.BaseURL, "/") + shortener.LinkPathPrefix + result.Code
			text = result.ShortLink
		}
		return out.Success(text, result)
	})
}

// ResolveResult is the JSON payload of a successful resolve.
type ResolveResult struct {
	Code string `json:"code"`
	URL  string `json:"url"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <code>",
		Short: "Print the URL a code redirects to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			return withSchema(ctx, rootOpts, func(s *Store) error {
				svc := app.NewService(s.Config, s.Repo, s.Logger)

				target, err := svc.Resolve(ctx, args[0])
				if err != nil {
					return out.Error("failed to resolve code", err)
				}
				return out.Success(target, ResolveResult{Code: args[0], URL: target})
			})
		},
	}
}
