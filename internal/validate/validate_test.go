package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/recruit-engine/internal/oracle"
	"github.com/pdiddy/recruit-engine/pkg/types"
)

type mockOracle struct {
	response json.RawMessage
	err      error
	lastReq  oracle.Request
}

func (m *mockOracle) Complete(_ context.Context, req oracle.Request) (json.RawMessage, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func testConfig() types.OracleConfig {
	return types.OracleConfig{Model: "test-model", Temperature: 0.1, MaxRetries: 1}
}

func strPtr(s string) *string { return &s }

// verdictsJSON builds a validation_results response where the named
// attributes are invalid (with no correction) and the rest are valid.
func verdictsJSON(attrs []string, invalid ...string) json.RawMessage {
	bad := make(map[string]bool)
	for _, a := range invalid {
		bad[a] = true
	}
	results := make(map[string]any)
	for _, a := range attrs {
		results[a] = map[string]any{"is_valid": !bad[a], "corrected_value": nil, "reason": "test"}
	}
	raw, _ := json.Marshal(map[string]any{"validation_results": results})
	return raw
}

func TestValidateThreshold(t *testing.T) {
	attrs := types.Attributes[:10]

	tests := []struct {
		name      string
		invalid   []string
		wantValid bool
	}{
		{"all valid", nil, true},
		{"2 of 10 invalid", attrs[:2], true},
		{"3 of 10 invalid", attrs[:3], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &mockOracle{response: verdictsJSON(attrs, tt.invalid...)}
			v := New(o, testConfig(), &bytes.Buffer{})

			valid, _, err := v.Validate(context.Background(), "corpus", types.FeatureSet{})
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", valid, tt.wantValid)
			}
		})
	}
}

func TestValidateZeroEvaluatedIsInvalid(t *testing.T) {
	// Verdicts naming only unknown attributes evaluate nothing.
	o := &mockOracle{response: json.RawMessage(`{
		"validation_results": {
			"favorite_color": {"is_valid": true, "corrected_value": null, "reason": "x"}
		}
	}`)}
	v := New(o, testConfig(), &bytes.Buffer{})

	valid, _, err := v.Validate(context.Background(), "corpus", types.FeatureSet{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if valid {
		t.Error("valid = true with zero evaluated attributes")
	}
}

func TestValidateInvalidAttributeNulled(t *testing.T) {
	fs := types.FeatureSet{Gender: strPtr("M"), Location: strPtr("Berlin")}

	o := &mockOracle{response: json.RawMessage(`{
		"validation_results": {
			"gender": {"is_valid": false, "corrected_value": null, "reason": "not stated"},
			"location": {"is_valid": true, "corrected_value": null, "reason": "stated"}
		}
	}`)}
	v := New(o, testConfig(), &bytes.Buffer{})

	_, got, err := v.Validate(context.Background(), "corpus", fs)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Gender != nil {
		t.Errorf("Gender = %v, want nil", *got.Gender)
	}
	if got.Location == nil || *got.Location != "Berlin" {
		t.Errorf("Location = %v, want Berlin", got.Location)
	}
}

func TestValidateCorrectionSubstituted(t *testing.T) {
	fs := types.FeatureSet{AgeRange: strPtr("18-24")}

	o := &mockOracle{response: json.RawMessage(`{
		"validation_results": {
			"age_range": {"is_valid": false, "corrected_value": "35-44", "reason": "author mentions being 38"}
		}
	}`)}
	v := New(o, testConfig(), &bytes.Buffer{})

	_, got, err := v.Validate(context.Background(), "corpus", fs)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.AgeRange == nil || *got.AgeRange != "35-44" {
		t.Errorf("AgeRange = %v, want 35-44", got.AgeRange)
	}
}

func TestValidateValidAttributeIgnoresCorrection(t *testing.T) {
	fs := types.FeatureSet{Gender: strPtr("F")}

	o := &mockOracle{response: json.RawMessage(`{
		"validation_results": {
			"gender": {"is_valid": true, "corrected_value": "M", "reason": "x"}
		}
	}`)}
	v := New(o, testConfig(), &bytes.Buffer{})

	_, got, err := v.Validate(context.Background(), "corpus", fs)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Gender == nil || *got.Gender != "F" {
		t.Errorf("Gender = %v, want F (valid verdicts leave the value alone)", got.Gender)
	}
}

func TestValidateUncoercibleCorrectionNulled(t *testing.T) {
	fs := types.FeatureSet{TreatmentSentiment: floatPtr(0.9)}

	var warnings bytes.Buffer
	o := &mockOracle{response: json.RawMessage(`{
		"validation_results": {
			"treatment_sentiment": {"is_valid": false, "corrected_value": "quite negative", "reason": "x"}
		}
	}`)}
	v := New(o, testConfig(), &warnings)

	_, got, err := v.Validate(context.Background(), "corpus", fs)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.TreatmentSentiment != nil {
		t.Errorf("TreatmentSentiment = %v, want nil", *got.TreatmentSentiment)
	}
	if !strings.Contains(warnings.String(), "treatment_sentiment") {
		t.Errorf("warning missing: %s", warnings.String())
	}
}

func TestValidateOracleFailureConservative(t *testing.T) {
	fs := types.FeatureSet{Gender: strPtr("F")}

	o := &mockOracle{err: fmt.Errorf("oracle down")}
	v := New(o, testConfig(), &bytes.Buffer{})

	valid, got, err := v.Validate(context.Background(), "corpus", fs)
	if err == nil {
		t.Fatal("expected error")
	}
	if valid {
		t.Error("valid = true on oracle failure")
	}
	if got.Gender == nil || *got.Gender != "F" {
		t.Error("feature set mutated on oracle failure")
	}
}

func TestValidatePromptContainsFeatures(t *testing.T) {
	fs := types.FeatureSet{Gender: strPtr("F"), IllnessTypes: []string{"lupus"}}

	o := &mockOracle{response: verdictsJSON([]string{"gender"})}
	v := New(o, testConfig(), &bytes.Buffer{})

	if _, _, err := v.Validate(context.Background(), "the corpus text", fs); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if !strings.Contains(o.lastReq.Prompt, "the corpus text") {
		t.Error("prompt does not contain the corpus")
	}
	if !strings.Contains(o.lastReq.Prompt, "lupus") {
		t.Error("prompt does not contain the serialized features")
	}
	if !strings.Contains(o.lastReq.Prompt, "validation_results") {
		t.Error("prompt does not pin the response format")
	}
}

func floatPtr(f float64) *float64 { return &f }
