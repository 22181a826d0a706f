// Package cli drives filter sessions from a terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Apurer/go-adoption-filters/internal/app/storage"
	"github.com/Apurer/go-adoption-filters/internal/clients/http/catalog"
	filtersmemory "github.com/Apurer/go-adoption-filters/internal/domains/filters/adapters/memory"
	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
	platformobservability "github.com/Apurer/go-adoption-filters/internal/platform/observability"
	platformredis "github.com/Apurer/go-adoption-filters/internal/platform/redis"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	CatalogURL   string
	PostgresDSN  string
	RedisAddr    string
	LogLevel     string
	OutputFormat string
	Timeout      time.Duration
	UserID       int64
}

type runtimeKey struct{}

// runtime carries the dependencies built by the root command.
type runtime struct {
	opts    *RootOptions
	logger  *slog.Logger
	catalog ports.CatalogClient
	prefs   *storage.Preferences
	seeded  bool
}

// NewRootCommand creates the petfilter command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	var rt *runtime

	cmd := &cobra.Command{
		Use:   "petfilter",
		Short: "Resolve adoption filters from the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			built, err := newRuntime(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt = built
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey{}, rt))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt != nil {
				rt.prefs.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.CatalogURL, "catalog-url", os.Getenv("CATALOG_BASE_URL"), "catalog API base URL (default: seeded in-memory catalog)")
	pf.StringVar(&opts.PostgresDSN, "postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL DSN of the preference store")
	pf.StringVar(&opts.RedisAddr, "redis-addr", os.Getenv("REDIS_ADDR"), "Redis address of the preference store")
	pf.StringVar(&opts.LogLevel, "log-level", "error", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "catalog request timeout")
	pf.Int64Var(&opts.UserID, "user", 0, "user id used to resolve favorites")

	cmd.AddCommand(newResolveCmd(), newShowCmd(), newClearCmd())
	return cmd
}

// Execute runs the root command with args.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRuntime(ctx context.Context, opts *RootOptions, logOut io.Writer) (*runtime, error) {
	if opts.OutputFormat != "text" && opts.OutputFormat != "json" {
		return nil, fmt.Errorf("unsupported output format %q", opts.OutputFormat)
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: platformobservability.ParseLevel(opts.LogLevel)}))
	rt := &runtime{opts: opts, logger: logger}

	if opts.CatalogURL == "" {
		rt.catalog = filtersmemory.NewCatalog(filtersmemory.SeedData())
		rt.seeded = true
	} else {
		c, err := catalog.NewClient(opts.CatalogURL, catalog.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
		if err != nil {
			return nil, err
		}
		rt.catalog = c
	}

	redisCfg := platformredis.ConfigFromEnv()
	redisCfg.Addr = opts.RedisAddr
	rt.prefs = storage.Open(ctx, storage.Options{
		PostgresDSN: opts.PostgresDSN,
		Redis:       redisCfg,
		RedisTTL:    storage.PreferenceTTLFromEnv(),
	}, logger)

	userID := opts.UserID
	if userID == 0 && rt.seeded {
		userID = filtersmemory.DemoUserID
	}
	if userID != 0 {
		if err := rt.prefs.SetUserID(ctx, userID); err != nil {
			rt.prefs.Close()
			return nil, fmt.Errorf("record user id: %w", err)
		}
	}
	return rt, nil
}

func runtimeFrom(cmd *cobra.Command) (*runtime, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtime)
	if !ok || rt == nil {
		return nil, fmt.Errorf("petfilter runtime not initialized")
	}
	return rt, nil
}
