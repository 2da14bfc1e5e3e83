package cli

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgo/docq/internal/config"
	"github.com/forgo/docq/internal/database"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
}

// NewRootCommand creates the root command for the docq CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "docq",
		Short: "Query and mutate SurrealDB tables from the command line",
		Long: `docq runs ad-hoc queries and mutations against a SurrealDB instance
using the same query builder the library exposes in Go.

Connection settings come from the environment (DB_HOST, DB_PORT,
DB_NAMESPACE, DB_DATABASE, DB_USER, DB_PASSWORD), optionally overlaid
with a YAML config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// connect loads configuration, sets up logging, and opens the database
// connection. The returned context carries the configured query timeout.
func connect(ctx context.Context, opts *RootOptions) (context.Context, context.CancelFunc, database.Database, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, nil, err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(opts, cfg),
	})))

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.Client.QueryTimeout)
	if err := db.Connect(ctx); err != nil {
		cancel()
		return nil, nil, nil, err
	}
	slog.Debug("connected", "host", cfg.Database.Host, "namespace", cfg.Database.Namespace)
	return ctx, cancel, db, nil
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.LoadFile(opts.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func logLevel(opts *RootOptions, cfg *config.Config) slog.Level {
	if opts.Verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(cfg.Client.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
