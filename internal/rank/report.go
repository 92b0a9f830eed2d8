// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

// WriteReport writes a scored shortlist as CSV: the full user-store column
// set plus a trailing ranking_score column.
func WriteReport(w io.Writer, shortlist []Scored) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, types.UserColumns...), "ranking_score")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range shortlist {
		row := make([]string, 0, len(header))
		for _, col := range types.UserColumns {
			val, _ := s.Column(col)
			row = append(row, formatCell(val))
		}
		row = append(row, strconv.FormatFloat(s.Score, 'f', 6, 64))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for %s: %w", s.UserID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteReportFile writes a shortlist to
// reportDir/{profile}_report_{timestamp}.csv and returns the path.
func WriteReportFile(reportDir, profile string, shortlist []Scored, now time.Time) (string, error) {
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	name := fmt.Sprintf("%s_report_%s.csv", profile, now.Format("20060102_150405"))
	path := filepath.Join(reportDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteReport(f, shortlist); err != nil {
		return "", err
	}
	return path, nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ";")
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
