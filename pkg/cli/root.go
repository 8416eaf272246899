// Package cli implements the reqvault command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reqvault/reqvault/pkg/config"
	"github.com/reqvault/reqvault/pkg/logging"
	"github.com/reqvault/reqvault/pkg/logstore"
)

// BuildInfo carries version details set at link time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var buildInfo = BuildInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown"}

var configPath string

// rootCmd is the Cobra command for "reqvault".
var rootCmd = &cobra.Command{
	Use:   "reqvault",
	Short: "Capture, store, query and replay inbound HTTP requests",
	Long: `reqvault persists snapshots of inbound requests to disk as numbered
segment files, indexes them by id, rotates segments by size, and supports
later retrieval, querying and replay.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default "+config.DefaultFileName+" when present)")
}

// Execute runs the CLI.
func Execute(info BuildInfo) error {
	if info.Version != "" {
		buildInfo = info
	}
	return rootCmd.Execute()
}

// loadConfig resolves the effective configuration: the --config file when
// given, reqvault.yaml in the working directory when present, otherwise
// defaults.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if _, err := os.Stat(config.DefaultFileName); err == nil {
		return config.Load(config.DefaultFileName)
	}
	return config.Default(), nil
}

// newLogger builds the logger described by the config file.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
	})
}

// newEngine wires the log-store engine from the effective configuration.
func newEngine() (*logstore.Engine, *config.Config, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger := newLogger(cfg)
	return logstore.New(cfg.StoreConfig(logger)), cfg, logger, nil
}
