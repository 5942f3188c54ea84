package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finanseer/cmd/bulk"
	"finanseer/cmd/categories"
	"finanseer/cmd/export"
	"finanseer/cmd/ingest"
	"finanseer/cmd/review"
	"finanseer/cmd/root"
	"finanseer/cmd/rules"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Configure global log level before any logging happens
	configureLogLevelDirectly()

	// 3. Initialize root command
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(review.Cmd)
	root.Cmd.AddCommand(bulk.Cmd)
	root.Cmd.AddCommand(rules.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}

	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global log level for all logrus
// instances before any command output is produced.
func configureLogLevelDirectly() {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}

	logrus.SetLevel(logLevel)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
