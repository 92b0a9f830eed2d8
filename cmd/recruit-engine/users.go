// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recruit-engine/internal/store"
	"github.com/pdiddy/recruit-engine/pkg/types"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Query user records in the store",
	Long: `Users lists stored user records, optionally filtered with --where
conditions of the form "column op value", where op is one of
eq, >, <, >=, <=. Conditions combine with AND.

Examples:
  recruit-engine users
  recruit-engine users --where "num_comments > 5"
  recruit-engine users --where "gender eq female" --where "avg_score >= 2"`,
	RunE: runUsers,
}

func init() {
	usersCmd.Flags().StringArray("where", nil, `filter condition "column op value" (repeatable)`)
	usersCmd.Flags().String("db", "", "user store database file (default data/users.db)")
	usersCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, args []string) error {
	wheres, _ := cmd.Flags().GetStringArray("where")
	conds, err := parseConditions(wheres)
	if err != nil {
		return err
	}

	dbPath := viper.GetString("process.db_path")
	if dbPath == "" {
		dbPath = "data/users.db"
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		dbPath = db
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Load(); err != nil {
		return err
	}

	records, err := s.Query(conds)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return formatUsersOutput(records, format)
}

// parseConditions parses "column op value" tokens into store conditions.
func parseConditions(wheres []string) ([]store.Condition, error) {
	conds := make([]store.Condition, 0, len(wheres))
	for _, w := range wheres {
		parts := strings.SplitN(strings.TrimSpace(w), " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid condition %q: expected \"column op value\"", w)
		}

		op, err := store.ParseOp(parts[1])
		if err != nil {
			return nil, err
		}

		conds = append(conds, store.Condition{
			Column: parts[0],
			Op:     op,
			Value:  parts[2],
		})
	}
	return conds, nil
}

func formatUsersOutput(records []types.UserRecord, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(records)
	case "table", "":
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	if len(records) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-8s  %-8s  %-6s  %-20s  %s\n",
		"User", "Comments", "AvgScore", "Depth", "Communities", "Updated")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range records {
		fmt.Fprintf(os.Stdout, "%-20s  %-8d  %-8.2f  %-6d  %-20s  %s\n",
			truncate(r.Username, 20), r.NumComments, r.AvgScore, r.ConversationDepth,
			truncate(strings.Join(r.CommunityTypes, ","), 20),
			r.UpdatedAt.UTC().Format(time.RFC3339))
	}

	fmt.Fprintf(os.Stdout, "\n%d users\n", len(records))
	return nil
}

// truncate shortens s to max runes, appending "..." when cut. Counting runes
// keeps multi-byte usernames from being split mid-character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
