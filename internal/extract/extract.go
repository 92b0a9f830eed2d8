// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives a fixed-schema feature set from one author's
// concatenated forum content via a single oracle call.
package extract

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

// systemInstruction pins the oracle to grounded extraction. Hallucination
// suppression happens again in the validation pass; this is the first line.
const systemInstruction = "You are a precise feature extractor. Extract only the information " +
	"that is explicitly mentioned or can be confidently inferred from the text. " +
	"If uncertain about any field, return null. Respond with a single JSON object and nothing else."

// extractionPromptTmpl is the prompt sent to the oracle for one author's
// corpus. The attribute schema is fixed; values the model cannot support
// from the text must come back null.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`Analyze the following forum content, written by a single author across one or more communities, and extract author information. Only extract information that is explicitly mentioned or can be confidently inferred. If uncertain about any field, return null.

Text:
{{.Corpus}}

Extract:
1. Demographics:
   - age_range: e.g. "18-24", "25-34" (string or null)
   - gender: M/F/Other (string or null)
   - location: city, state, or country (string or null)
   - income_level: high/medium/low, based on mentioned job or lifestyle (string or null)
   - education_level: high/medium/low, based on vocabulary and mentioned background (string or null)

2. Health information:
   - illness_types: list of mentioned illnesses or conditions (list of strings)
   - treatment_history: list of mentioned treatments or medications (list of strings)

3. Interest in clinical trials:
   - clinical_trial_interest: high/medium/low (string or null)
   - money_making_interest: interest in making money from trials, high/medium/low (string or null)

4. Sentiment:
   - clinical_trials_sentiment: sentiment towards clinical trials, -1 to 1 (float or null)
   - treatment_sentiment: sentiment towards current or past treatments, -1 to 1 (float or null)

Reason step by step, but respond with only a JSON object whose keys are exactly the attribute names above.
`))

// Extractor performs single-shot structured extraction through an injected
// oracle. The oracle is stochastic; Extract is best-effort, not pure.
type Extractor struct {
	oracle      oracle.Oracle
	temperature float64
	maxRetries  int
	warnings    io.Writer
}

// New returns an Extractor. Warnings about degraded extractions and dropped
// attributes are written to w.
func New(o oracle.Oracle, cfg types.OracleConfig, w io.Writer) *Extractor {
	return &Extractor{
		oracle:      o,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		warnings:    w,
	}
}

// Extract runs one oracle call over the author's corpus and cleans the raw
// output into a FeatureSet. On transport or parse failure it returns the
// empty FeatureSet along with the error so one author cannot abort a batch;
// callers log and move on.
func (e *Extractor) Extract(ctx context.Context, corpus string) (types.FeatureSet, error) {
	prompt, err := renderPrompt(corpus)
	if err != nil {
		return types.FeatureSet{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := oracle.CompleteWithRetry(ctx, e.oracle, oracle.Request{
		System:      systemInstruction,
		Prompt:      prompt,
		Temperature: e.temperature,
	}, e.maxRetries)
	if err != nil {
		return types.FeatureSet{}, fmt.Errorf("extraction oracle: %w", err)
	}

	fs, err := Clean(raw, e.warnings)
	if err != nil {
		return types.FeatureSet{}, fmt.Errorf("cleaning extraction: %w", err)
	}
	return fs, nil
}

// Clean normalizes a raw oracle response object into a FeatureSet: null
// markers become true nulls, string-encoded lists become lists, and
// attribute names outside the fixed catalog are dropped with a warning.
func Clean(raw json.RawMessage, w io.Writer) (types.FeatureSet, error) {
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return types.FeatureSet{}, fmt.Errorf("parsing response object: %w", err)
	}

	var fs types.FeatureSet
	for name, value := range attrs {
		if !types.KnownAttribute(name) {
			fmt.Fprintf(w, "warning: dropping unknown attribute %q\n", name)
			continue
		}
		if err := fs.Apply(name, value); err != nil {
			fmt.Fprintf(w, "warning: dropping attribute %q: %v\n", name, err)
			fs.Clear(name)
		}
	}
	return fs, nil
}

func renderPrompt(corpus string) (string, error) {
	var buf bytes.Buffer
	if err := extractionPromptTmpl.Execute(&buf, struct{ Corpus string }{Corpus: corpus}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
