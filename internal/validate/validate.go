// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate cross-checks extracted feature sets against the source
// text through a second oracle pass and suppresses unsupported attributes.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/pdiddy/recruit-engine/internal/oracle"
	"github.com/pdiddy/recruit-engine/pkg/types"
)

// invalidThreshold is the invalid-attribute ratio at or above which the
// whole feature set is judged unreliable. 3 invalid out of 10 evaluated
// fails; 2 out of 10 passes.
const invalidThreshold = 0.3

const systemInstruction = "You are a critical validator focused on identifying unsupported " +
	"claims and hallucinations in extracted features. Respond with a single JSON object and nothing else."

var validationPromptTmpl = template.Must(template.New("validation").Parse(`Analyze if the extracted features are supported by the original text.

Original text:
{{.Corpus}}

Extracted features:
{{.Features}}

For each feature, analyze if it is valid based on the text.

Return a JSON object in this exact format:
{
    "validation_results": {
        "feature_name": {
            "is_valid": boolean,
            "corrected_value": any or null,
            "reason": "string explanation"
        }
    }
}
`))

// verdict is the per-attribute result returned by the oracle.
type verdict struct {
	IsValid        bool            `json:"is_valid"`
	CorrectedValue json.RawMessage `json:"corrected_value"`
	Reason         string          `json:"reason"`
}

type oracleVerdicts struct {
	ValidationResults map[string]verdict `json:"validation_results"`
}

// Validator checks feature sets against their source corpus through an
// injected oracle.
type Validator struct {
	oracle      oracle.Oracle
	temperature float64
	maxRetries  int
	warnings    io.Writer
}

// New returns a Validator writing warnings to w.
func New(o oracle.Oracle, cfg types.OracleConfig, w io.Writer) *Validator {
	return &Validator{
		oracle:      o,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		warnings:    w,
	}
}

// Validate cross-checks fs against the corpus. Invalid attributes are
// replaced by the oracle's corrected value when one is supplied, otherwise
// nulled; valid attributes are left untouched regardless of any correction
// present. The overall verdict is valid iff fewer than 30% of evaluated
// attributes are invalid; zero evaluated attributes is invalid.
//
// On oracle transport or parse failure Validate is conservative: it returns
// (false, fs unchanged) together with the error.
func (v *Validator) Validate(ctx context.Context, corpus string, fs types.FeatureSet) (bool, types.FeatureSet, error) {
	raw, err := v.call(ctx, validationPromptTmpl, systemInstruction, corpus, fs)
	if err != nil {
		return false, fs, fmt.Errorf("validation oracle: %w", err)
	}

	var verdicts oracleVerdicts
	if err := json.Unmarshal(raw, &verdicts); err != nil {
		return false, fs, fmt.Errorf("parsing validation results: %w", err)
	}

	return applyVerdicts(fs, verdicts.ValidationResults, v.warnings)
}

// applyVerdicts merges per-attribute verdicts into the feature set and
// aggregates the overall pass/fail.
func applyVerdicts(fs types.FeatureSet, results map[string]verdict, w io.Writer) (bool, types.FeatureSet, error) {
	evaluated := 0
	invalid := 0

	for name, res := range results {
		if !types.KnownAttribute(name) {
			continue
		}
		evaluated++
		if res.IsValid {
			continue
		}

		invalid++
		if isNullValue(res.CorrectedValue) {
			fs.Clear(name)
			continue
		}
		if err := fs.Apply(name, res.CorrectedValue); err != nil {
			fmt.Fprintf(w, "warning: discarding corrected value for %q: %v\n", name, err)
			fs.Clear(name)
		}
	}

	if evaluated == 0 {
		return false, fs, nil
	}
	valid := float64(invalid)/float64(evaluated) < invalidThreshold
	return valid, fs, nil
}

// isNullValue reports whether a corrected_value is absent or JSON null.
func isNullValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// call renders a prompt over the corpus and serialized feature set and runs
// one retried oracle round-trip.
func (v *Validator) call(ctx context.Context, tmpl *template.Template, system, corpus string, fs types.FeatureSet) (json.RawMessage, error) {
	features, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing features: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct{ Corpus, Features string }{Corpus: corpus, Features: string(features)})
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	return oracle.CompleteWithRetry(ctx, v.oracle, oracle.Request{
		System:      system,
		Prompt:      buf.String(),
		Temperature: v.temperature,
	}, v.maxRetries)
}
