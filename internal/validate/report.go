// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

const reportSystemInstruction = "You are a detailed feature validation analyst providing " +
	"comprehensive analysis of extraction quality. Respond with a single JSON object and nothing else."

var reportPromptTmpl = template.Must(template.New("report").Parse(`Generate a detailed validation report for the extracted features.

Original text:
{{.Corpus}}

Extracted features:
{{.Features}}

Analyze:
1. Overall reliability of extraction
2. Specific concerns about any features
3. Suggestions for improvement

Return in JSON format:
{
    "reliability_score": float (0-1),
    "feature_analysis": {
        "feature_name": {
            "confidence": float (0-1),
            "concerns": "string or null",
            "suggestions": "string or null"
        }
    },
    "overall_recommendations": "string"
}
`))

// FeatureAnalysis is the per-attribute diagnostic in a Report.
type FeatureAnalysis struct {
	Confidence  float64 `json:"confidence" yaml:"confidence"`
	Concerns    *string `json:"concerns" yaml:"concerns"`
	Suggestions *string `json:"suggestions" yaml:"suggestions"`
}

// Report is a detailed extraction-quality diagnostic. It shares the oracle
// contract with Validate but is not part of the pass/fail path.
type Report struct {
	ReliabilityScore       float64                    `json:"reliability_score" yaml:"reliability_score"`
	FeatureAnalysis        map[string]FeatureAnalysis `json:"feature_analysis" yaml:"feature_analysis"`
	OverallRecommendations string                     `json:"overall_recommendations" yaml:"overall_recommendations"`
}

// Report generates an extraction-quality diagnostic for fs against its
// source corpus.
func (v *Validator) Report(ctx context.Context, corpus string, fs types.FeatureSet) (*Report, error) {
	raw, err := v.call(ctx, reportPromptTmpl, reportSystemInstruction, corpus, fs)
	if err != nil {
		return nil, fmt.Errorf("report oracle: %w", err)
	}

	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("parsing validation report: %w", err)
	}
	return &report, nil
}
