// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recruit-engine/internal/scrape"
	"github.com/pdiddy/recruit-engine/internal/secrets"
	"github.com/pdiddy/recruit-engine/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "recruit-engine/0.1"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [communities...]",
	Short: "Scrape community discussions into raw batch files",
	Long: `Scrape fetches the hot posts of each configured community along with
their comment trees and writes one timestamped raw batch file per community.
Communities can be given as arguments (name or name:category) or configured
in the config file under scrape.communities.

With reddit-client-id and reddit-client-secret secrets configured the
authenticated API endpoints are used; otherwise the public ones.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	scrapeCmd.Flags().Duration("delay", 0, "delay between consecutive API calls (default 1s)")
	scrapeCmd.Flags().Int("limit", 0, "hot posts fetched per community (default 10)")
	scrapeCmd.Flags().Int("max-depth", 0, "comment tree depth cap (default 3)")
	scrapeCmd.Flags().String("raw-dir", "", "directory for raw batch files (default raw_data)")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := scrapeConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Communities) == 0 {
		return fmt.Errorf("no communities: pass them as arguments or configure scrape.communities")
	}

	ctx := context.Background()
	client := scrape.New(cfg)
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}

	summary, err := scrape.ScrapeAll(ctx, client, cfg, time.Now().UTC(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d communit(ies) failed scraping", summary.Failed)
	}
	return nil
}

// scrapeConfig merges flags, config file values, and secrets into a
// ScrapeConfig. Flags win over config file values.
func scrapeConfig(cmd *cobra.Command, args []string) (types.ScrapeConfig, error) {
	cfg := types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		RequestDelay: defaultDelay,
		RawDataDir:   "raw_data",
	}

	if err := viper.UnmarshalKey("scrape", &cfg); err != nil {
		return cfg, fmt.Errorf("parsing scrape config: %w", err)
	}

	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.Timeout = timeout
	}
	if delay, _ := cmd.Flags().GetDuration("delay"); delay > 0 {
		cfg.RequestDelay = delay
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.PostLimit = limit
	}
	if depth, _ := cmd.Flags().GetInt("max-depth"); depth > 0 {
		cfg.MaxDepth = depth
	}
	if rawDir, _ := cmd.Flags().GetString("raw-dir"); rawDir != "" {
		cfg.RawDataDir = rawDir
	}

	for _, arg := range args {
		cfg.Communities = append(cfg.Communities, parseCommunity(arg))
	}

	if cfg.ClientID == "" {
		cfg.ClientID = secrets.Get(loadedSecrets, "reddit-client-id", "REDDIT_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = secrets.Get(loadedSecrets, "reddit-client-secret", "REDDIT_CLIENT_SECRET")
	}

	return cfg, nil
}

// parseCommunity parses a "name" or "name:category" argument. Without an
// explicit category the community defaults to health.
func parseCommunity(arg string) types.Community {
	name, category, found := strings.Cut(arg, ":")
	com := types.Community{Name: name, Category: types.CategoryHealth}
	if found && types.CommunityCategory(category) == types.CategoryMoney {
		com.Category = types.CategoryMoney
	}
	return com
}
