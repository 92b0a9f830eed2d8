// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recruit-engine/internal/rank"
	"github.com/pdiddy/recruit-engine/internal/store"
	"github.com/pdiddy/recruit-engine/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank [profiles...]",
	Short: "Rank stored users and write shortlist reports",
	Long: `Rank scores every user in the store against each ranking profile's
weight vector, takes the top N per profile, and writes one CSV report per
profile. Without arguments all configured profiles are ranked.

Builtin profiles: money_motivated, treatment_seeking. Custom profiles can be
defined in the config file under ranking.profiles.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().Int("top", 0, "shortlist size per profile (default 10)")
	rankCmd.Flags().String("report-dir", "", "directory for report files (default reports)")
	rankCmd.Flags().String("db", "", "user store database file (default data/users.db)")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, dbPath, err := rankingConfig(cmd)
	if err != nil {
		return err
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Load(); err != nil {
		return err
	}

	records := s.All()
	if len(records) == 0 {
		return fmt.Errorf("user store is empty: run process first")
	}

	profiles := args
	if len(profiles) == 0 {
		profiles = rank.ProfileNames(cfg)
	}

	now := time.Now().UTC()
	for _, name := range profiles {
		profile, err := rank.ProfileFromConfig(cfg, name)
		if err != nil {
			return err
		}

		shortlist := rank.TopN(rank.Rank(records, profile), cfg.TopN)

		path, err := rank.WriteReportFile(cfg.ReportDir, name, shortlist, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "ranked %s: %d users, report %s\n", name, len(shortlist), path)
	}

	return nil
}

// rankingConfig merges flags and config file values into a RankingConfig
// plus the store path. Flags win over config file values.
func rankingConfig(cmd *cobra.Command) (types.RankingConfig, string, error) {
	cfg := types.RankingConfig{
		TopN:      10,
		ReportDir: "reports",
	}

	if err := viper.UnmarshalKey("ranking", &cfg); err != nil {
		return cfg, "", fmt.Errorf("parsing ranking config: %w", err)
	}

	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		cfg.TopN = top
	}
	if reportDir, _ := cmd.Flags().GetString("report-dir"); reportDir != "" {
		cfg.ReportDir = reportDir
	}

	dbPath := viper.GetString("process.db_path")
	if dbPath == "" {
		dbPath = "data/users.db"
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		dbPath = db
	}

	return cfg, dbPath, nil
}
