// Package root contains the root command for the application.
package root

import (
	"finanseer/internal/categorizer"
	"finanseer/internal/config"
	"finanseer/internal/exporter"
	"finanseer/internal/importer"
	"finanseer/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the application configuration, loaded before any command runs
	Cfg *config.Config

	// DatabasePath overrides the configured database location when set
	DatabasePath string

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "finanseer",
		Short: "Import, categorize and export bank transactions.",
		Long: `finanseer imports bank CSV exports into a local database, deduplicates
them, assigns budget categories interactively or through pattern rules, and
exports the result as a YNAB-compatible CSV.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to finanseer!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize and configure logging
			config.LoadEnv()
			Log = config.ConfigureLogging()

			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Failed to initialize configuration: %v", err)
			}
			Cfg = cfg

			// Set the configured logger for all core packages
			store.SetLogger(Log)
			categorizer.SetLogger(Log)
			importer.SetLogger(Log)
			exporter.SetLogger(Log)

			// Apply the configured CSV delimiter to all input reads
			if delim := Cfg.CSV.Delimiter; delim != "" {
				importer.SetDelimiter([]rune(delim)[0])
			}
		},
	}
)

// Init initializes the root command and all persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&DatabasePath, "db", "", "Path to the SQLite database file (overrides configuration)")
}

// OpenStore opens the record store for one command invocation. The caller
// owns the handle and must close it when the command finishes.
func OpenStore() (*store.SQLiteStore, error) {
	path := DatabasePath
	if path == "" {
		path = Cfg.Database.Path
	}
	return store.OpenSQLite(path)
}
