// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attribute names in the fixed extraction catalog. The oracle is only ever
// asked for these; anything else it volunteers is dropped.
const (
	AttrAgeRange                = "age_range"
	AttrGender                  = "gender"
	AttrLocation                = "location"
	AttrIncomeLevel             = "income_level"
	AttrEducationLevel          = "education_level"
	AttrIllnessTypes            = "illness_types"
	AttrTreatmentHistory        = "treatment_history"
	AttrClinicalTrialInterest   = "clinical_trial_interest"
	AttrMoneyMakingInterest     = "money_making_interest"
	AttrClinicalTrialsSentiment = "clinical_trials_sentiment"
	AttrTreatmentSentiment      = "treatment_sentiment"
)

// Attributes lists the catalog in canonical order.
var Attributes = []string{
	AttrAgeRange,
	AttrGender,
	AttrLocation,
	AttrIncomeLevel,
	AttrEducationLevel,
	AttrIllnessTypes,
	AttrTreatmentHistory,
	AttrClinicalTrialInterest,
	AttrMoneyMakingInterest,
	AttrClinicalTrialsSentiment,
	AttrTreatmentSentiment,
}

// KnownAttribute reports whether name is part of the fixed catalog.
func KnownAttribute(name string) bool {
	for _, a := range Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// FeatureSet is the fixed-schema bundle of demographic, health, interest,
// and sentiment attributes for one author. Nil pointers and nil slices mean
// the attribute is unknown. The zero value is the empty feature set.
type FeatureSet struct {
	// Demographics.
	AgeRange       *string `json:"age_range" yaml:"age_range"`
	Gender         *string `json:"gender" yaml:"gender"`
	Location       *string `json:"location" yaml:"location"`
	IncomeLevel    *string `json:"income_level" yaml:"income_level"`
	EducationLevel *string `json:"education_level" yaml:"education_level"`

	// Health.
	IllnessTypes     []string `json:"illness_types" yaml:"illness_types"`
	TreatmentHistory []string `json:"treatment_history" yaml:"treatment_history"`

	// Interest, ordinal high/medium/low.
	ClinicalTrialInterest *string `json:"clinical_trial_interest" yaml:"clinical_trial_interest"`
	MoneyMakingInterest   *string `json:"money_making_interest" yaml:"money_making_interest"`

	// Sentiment, in [-1, 1].
	ClinicalTrialsSentiment *float64 `json:"clinical_trials_sentiment" yaml:"clinical_trials_sentiment"`
	TreatmentSentiment      *float64 `json:"treatment_sentiment" yaml:"treatment_sentiment"`
}

// Apply coerces a raw oracle-supplied JSON value and assigns it to the named
// attribute. Empty strings and the literal markers "null"/"none" become a
// true null; list attributes accept a JSON array, a string-encoded array, or
// a bare string (one-element list); sentiment values are clamped to [-1, 1].
// Unknown attribute names are an error.
func (f *FeatureSet) Apply(name string, raw json.RawMessage) error {
	switch name {
	case AttrAgeRange:
		return applyString(&f.AgeRange, raw)
	case AttrGender:
		return applyString(&f.Gender, raw)
	case AttrLocation:
		return applyString(&f.Location, raw)
	case AttrIncomeLevel:
		return applyString(&f.IncomeLevel, raw)
	case AttrEducationLevel:
		return applyString(&f.EducationLevel, raw)
	case AttrIllnessTypes:
		return applyStringList(&f.IllnessTypes, raw)
	case AttrTreatmentHistory:
		return applyStringList(&f.TreatmentHistory, raw)
	case AttrClinicalTrialInterest:
		return applyString(&f.ClinicalTrialInterest, raw)
	case AttrMoneyMakingInterest:
		return applyString(&f.MoneyMakingInterest, raw)
	case AttrClinicalTrialsSentiment:
		return applyScore(&f.ClinicalTrialsSentiment, raw)
	case AttrTreatmentSentiment:
		return applyScore(&f.TreatmentSentiment, raw)
	default:
		return fmt.Errorf("unknown attribute %q", name)
	}
}

// IsEmpty reports whether every attribute is null. FeatureSet contains
// slice fields, so callers cannot compare against the zero value directly.
func (f FeatureSet) IsEmpty() bool {
	return f.AgeRange == nil && f.Gender == nil && f.Location == nil &&
		f.IncomeLevel == nil && f.EducationLevel == nil &&
		f.IllnessTypes == nil && f.TreatmentHistory == nil &&
		f.ClinicalTrialInterest == nil && f.MoneyMakingInterest == nil &&
		f.ClinicalTrialsSentiment == nil && f.TreatmentSentiment == nil
}

// Clear nulls the named attribute. Returns false for unknown names.
func (f *FeatureSet) Clear(name string) bool {
	switch name {
	case AttrAgeRange:
		f.AgeRange = nil
	case AttrGender:
		f.Gender = nil
	case AttrLocation:
		f.Location = nil
	case AttrIncomeLevel:
		f.IncomeLevel = nil
	case AttrEducationLevel:
		f.EducationLevel = nil
	case AttrIllnessTypes:
		f.IllnessTypes = nil
	case AttrTreatmentHistory:
		f.TreatmentHistory = nil
	case AttrClinicalTrialInterest:
		f.ClinicalTrialInterest = nil
	case AttrMoneyMakingInterest:
		f.MoneyMakingInterest = nil
	case AttrClinicalTrialsSentiment:
		f.ClinicalTrialsSentiment = nil
	case AttrTreatmentSentiment:
		f.TreatmentSentiment = nil
	default:
		return false
	}
	return true
}

// isNullMarker reports whether s is a string the oracle uses to mean "no
// value": empty, "null", or "none" (case-insensitive).
func isNullMarker(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none":
		return true
	}
	return false
}

func applyString(dst **string, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	switch val := v.(type) {
	case nil:
		*dst = nil
	case string:
		if isNullMarker(val) {
			*dst = nil
			return nil
		}
		s := val
		*dst = &s
	case float64:
		s := strconv.FormatFloat(val, 'f', -1, 64)
		*dst = &s
	default:
		return fmt.Errorf("expected string, got %T", v)
	}
	return nil
}

func applyScore(dst **float64, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	switch val := v.(type) {
	case nil:
		*dst = nil
		return nil
	case float64:
		c := clampScore(val)
		*dst = &c
		return nil
	case string:
		if isNullMarker(val) {
			*dst = nil
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return fmt.Errorf("parsing score %q: %w", val, err)
		}
		c := clampScore(parsed)
		*dst = &c
		return nil
	default:
		return fmt.Errorf("expected number, got %T", v)
	}
}

func clampScore(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func applyStringList(dst *[]string, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	switch val := v.(type) {
	case nil:
		*dst = nil
		return nil
	case []any:
		*dst = stringifyList(val)
		return nil
	case string:
		if isNullMarker(val) {
			*dst = nil
			return nil
		}
		// Oracles sometimes return a string-encoded array. A bare string
		// becomes a one-element list.
		trimmed := strings.TrimSpace(val)
		if strings.HasPrefix(trimmed, "[") {
			var inner []any
			if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
				*dst = stringifyList(inner)
				return nil
			}
		}
		*dst = []string{val}
		return nil
	default:
		return fmt.Errorf("expected list, got %T", v)
	}
}

func stringifyList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if !isNullMarker(v) {
				out = append(out, v)
			}
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return out
}
