// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recruit-engine/internal/extract"
	"github.com/pdiddy/recruit-engine/internal/oracle"
	"github.com/pdiddy/recruit-engine/internal/pipeline"
	"github.com/pdiddy/recruit-engine/internal/secrets"
	"github.com/pdiddy/recruit-engine/internal/store"
	"github.com/pdiddy/recruit-engine/internal/validate"
	"github.com/pdiddy/recruit-engine/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract and validate user features from raw batch files",
	Long: `Process reads raw batch files, flattens each conversation tree into
per-author corpora, extracts a feature profile per author with the oracle,
validates the profile against the author's own text, and upserts user
records into the store. Batches with a completion marker are skipped.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("provider", "", "oracle provider: openai or anthropic (default openai)")
	processCmd.Flags().String("model", "", "oracle model identifier")
	processCmd.Flags().String("raw-dir", "", "directory containing raw batch files (default raw_data)")
	processCmd.Flags().String("processed-dir", "", "directory for completion markers (default processed_data)")
	processCmd.Flags().String("db", "", "user store database file (default data/users.db)")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := processConfig(cmd)
	if err != nil {
		return err
	}

	o, err := oracle.New(cfg.OracleConfig)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	deps := pipeline.Deps{
		Extractor: extract.New(o, cfg.OracleConfig, os.Stdout),
		Validator: validate.New(o, cfg.OracleConfig, os.Stdout),
		Store:     s,
	}

	summary, err := pipeline.Process(context.Background(), deps, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d batch(es) failed processing", summary.Failed)
	}
	return nil
}

// processConfig merges flags, config file values, and secrets into a
// ProcessConfig. Flags win over config file values.
func processConfig(cmd *cobra.Command) (types.ProcessConfig, error) {
	cfg := types.ProcessConfig{
		OracleConfig: types.OracleConfig{
			Provider:    types.ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
			MaxRetries:  3,
		},
		RawDataDir:   "raw_data",
		ProcessedDir: "processed_data",
		DBPath:       "data/users.db",
	}

	if err := viper.UnmarshalKey("process", &cfg); err != nil {
		return cfg, fmt.Errorf("parsing process config: %w", err)
	}

	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		cfg.Provider = types.OracleProvider(provider)
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model = model
	}
	if rawDir, _ := cmd.Flags().GetString("raw-dir"); rawDir != "" {
		cfg.RawDataDir = rawDir
	}
	if processedDir, _ := cmd.Flags().GetString("processed-dir"); processedDir != "" {
		cfg.ProcessedDir = processedDir
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}

	if cfg.APIKey == "" {
		switch cfg.Provider {
		case types.ProviderAnthropic:
			cfg.APIKey = secrets.Get(loadedSecrets, "anthropic-api-key", "ANTHROPIC_API_KEY")
		default:
			cfg.APIKey = secrets.Get(loadedSecrets, "openai-api-key", "OPENAI_API_KEY")
		}
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("no API key for provider %s: add a secret file or set the environment variable", cfg.Provider)
	}

	return cfg, nil
}
