package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"study-planner/internal/config"
	"study-planner/internal/logging"
	"study-planner/internal/repository"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel    string // overrides LOG_LEVEL when set
	DatabaseURL string // overrides DATABASE_URL when set
}

// NewRootCommand creates the root command for the studyplanner CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "studyplanner",
		Short: "Study planner backend",
		Long: `Study planner keeps daily plans, multi-day projects and study groups.

It serves a JSON API, optionally runs a Telegram bot, and keeps the
per-day and per-month counters consistent with the plans they summarize.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "db", "", "SQLite DSN, overrides DATABASE_URL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// runtime is what every subcommand needs before it can do its work.
type runtime struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB
}

// setup loads configuration, applies flag overrides, builds the logger and opens
// (and migrates) the database.
func setup(opts *RootOptions) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.DatabaseURL != "" {
		cfg.DatabaseURL = opts.DatabaseURL
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("db: %w", err)
	}

	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (rt *runtime) close() {
	if sqlDB, err := rt.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			rt.log.Warn("close db", zap.Error(err))
		}
	}
	_ = rt.log.Sync()
}
