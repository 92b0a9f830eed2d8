// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank computes weighted composite scores over user records and
// selects top-N shortlists per named ranking profile.
package rank

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

// ErrUnknownProfile reports a ranking profile name with no configured or
// builtin weight vector. Fatal for the run, never retried.
var ErrUnknownProfile = errors.New("unknown ranking profile")

// DefaultProfiles are the builtin weight vectors used when the
// configuration supplies none.
var DefaultProfiles = map[string]map[string]float64{
	"money_motivated": {
		types.AttrClinicalTrialsSentiment: 0.3,
		types.ColAvgScore:                 0.3,
		types.ColNumComments:              0.2,
		types.ColConversationCount:        0.2,
	},
	"treatment_seeking": {
		types.AttrTreatmentSentiment: 0.4,
		types.ColNumComments:         0.2,
		types.ColConversationDepth:   0.2,
		types.ColParentInteractions:  0.2,
	},
}

// Profile is a named mapping from user-store column to weight.
type Profile struct {
	Name    string
	Weights map[string]float64
}

// ProfileFromConfig resolves a profile name against the configuration,
// falling back to the builtins when the configuration defines no profiles.
func ProfileFromConfig(cfg types.RankingConfig, name string) (Profile, error) {
	profiles := cfg.Profiles
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}
	weights, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return Profile{Name: name, Weights: weights}, nil
}

// ProfileNames returns the configured (or builtin) profile names, sorted.
func ProfileNames(cfg types.RankingConfig) []string {
	profiles := cfg.Profiles
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scored is a user record augmented with its composite ranking score.
type Scored struct {
	types.UserRecord
	Score float64 `json:"ranking_score" yaml:"ranking_score"`
}

// Rank computes every record's composite score under the profile. Per
// weighted column, present numeric values are min-max normalized to [0, 1];
// values that cannot be coerced contribute 0, a column with no variance
// contributes 0 to every record, and columns absent from the record schema
// are silently skipped.
func Rank(records []types.UserRecord, p Profile) []Scored {
	scored := make([]Scored, len(records))
	for i, rec := range records {
		scored[i] = Scored{UserRecord: rec}
	}

	// Deterministic column order; map iteration would still be correct
	// (terms are summed) but keeps any float differences reproducible.
	columns := make([]string, 0, len(p.Weights))
	for col := range p.Weights {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, col := range columns {
		if _, ok := (&types.UserRecord{}).Column(col); !ok {
			continue
		}

		values := make([]float64, len(records))
		present := make([]bool, len(records))
		minVal, maxVal := 0.0, 0.0
		seen := false

		for i := range records {
			raw, _ := records[i].Column(col)
			v, ok := numericValue(raw)
			if !ok {
				continue
			}
			values[i] = v
			present[i] = true
			if !seen || v < minVal {
				minVal = v
			}
			if !seen || v > maxVal {
				maxVal = v
			}
			seen = true
		}

		// No variance: the column cannot separate users, so it is skipped
		// rather than divided by zero.
		if !seen || maxVal == minVal {
			continue
		}

		weight := p.Weights[col]
		for i := range scored {
			if present[i] {
				scored[i].Score += weight * (values[i] - minVal) / (maxVal - minVal)
			}
		}
	}

	return scored
}

// TopN returns the n highest-scoring records. Order is descending score
// with ties broken by ascending author identifier, so shortlists are
// deterministic across runs.
func TopN(scored []Scored, n int) []Scored {
	out := make([]Scored, len(scored))
	copy(out, scored)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// numericValue coerces a column value to a float for normalization.
// Missing (nil) and non-numeric values are excluded, not treated as zero.
func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
