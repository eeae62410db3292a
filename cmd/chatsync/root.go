package main

import (
	"chat-sync/internal"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "chatsync",
	Short: "Realtime chat client kept in sync with a remote message log",
	Long: `chatsync keeps a local view of a shared chat room in sync with the remote,
ordered message log. Messages are shown once the log has accepted them, and the
last known history is kept on disk to be shown while reconnecting.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits with a non-zero code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the environment")
}

// setup loads the configuration, builds the logger and opens the local store.
// The caller closes the returned database.
func setup() (internal.Config, *slog.Logger, *badger.DB, error) {
	config, err := internal.LoadConfig(envFile)
	if err != nil {
		return internal.Config{}, nil, nil, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return internal.Config{}, nil, nil, fmt.Errorf("database opening failed: %w", err)
	}
	return config, log, db, nil
}
