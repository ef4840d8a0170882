// jobboard-service aggregates legal job listings from external job-search
// APIs into one normalised, deduplicated feed.
//
//	jobboard serve                 HTTP + gRPC API and cache warm-up scheduler
//	jobboard search --query …      one-shot aggregated search printed to stdout
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"legallyai/jobboard-service/internal/config"
	"legallyai/jobboard-service/internal/logging"
)

const version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "jobboard",
	Short:         "Legal job-listing aggregation service",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "optional TOML config file; environment variables override it")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and builds the logger every command
// starts from.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}
