// Package cli implements the tally command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tOgg1/tally/internal/config"
	"github.com/tOgg1/tally/internal/db"
	"github.com/tOgg1/tally/internal/logging"
	"github.com/tOgg1/tally/internal/models"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	jsonOutput bool
	logLevel   string
	noColor    bool
	dbPath     string
}

// app carries what commands need between flag parsing and RunE.
type app struct {
	opts   globalOptions
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
}

// Execute runs the tally command line.
func Execute(version string) error {
	return newRootCmd(version, os.Stdout, os.Stderr).Execute()
}

func newRootCmd(version string, out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "tally",
		Short:         "Unread message counts for chat sessions",
		Long:          "tally replays chat session state and events and reports unread counts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			logger := logging.Component("cli").With().Str("command", cmd.CommandPath()).Logger()
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configFile, "config", "", "config file (default: ~/.config/tally/config.yaml)")
	flags.BoolVar(&a.opts.jsonOutput, "json", false, "output JSON")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&a.opts.dbPath, "db", "", "fixture database path")

	cmd.AddCommand(
		newCountsCmd(a),
		newFixtureCmd(a),
		newPeopleCmd(a),
		newJournalCmd(a),
	)

	return cmd
}

// init loads config and sets up logging. Flags win over config.
func (a *app) init() error {
	loader := config.NewLoader()
	if a.opts.configFile != "" {
		loader.SetConfigFile(a.opts.configFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if a.opts.logLevel != "" {
		cfg.Logging.Level = a.opts.logLevel
	}
	if a.opts.dbPath != "" {
		cfg.Database.Path = a.opts.dbPath
	}
	a.cfg = cfg

	output := a.errOut
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
	}
	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       output,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	if used := loader.ConfigFileUsed(); used != "" {
		logging.Debug().Str("config", used).Msg("config loaded")
	}
	return nil
}

// openDatabase opens the fixture database and brings its schema up to date.
func (a *app) openDatabase(ctx context.Context) (*db.DB, error) {
	database, err := db.Open(db.Config{
		Path:          a.cfg.DatabasePath(),
		BusyTimeoutMs: a.cfg.Database.BusyTimeoutMs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := database.MigrateUp(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

func (a *app) isJSON() bool {
	return a.opts.jsonOutput
}

func parseUserID(s string) (models.UserID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return models.UserID(id), nil
}
