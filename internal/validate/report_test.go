package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

func TestReport(t *testing.T) {
	o := &mockOracle{response: json.RawMessage(`{
		"reliability_score": 0.85,
		"feature_analysis": {
			"gender": {"confidence": 0.95, "concerns": null, "suggestions": null},
			"location": {"confidence": 0.4, "concerns": "only a timezone hint", "suggestions": "null unless stated"}
		},
		"overall_recommendations": "mostly reliable"
	}`)}
	v := New(o, testConfig(), &bytes.Buffer{})

	report, err := v.Report(context.Background(), "the corpus", types.FeatureSet{Gender: strPtr("F")})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if report.ReliabilityScore != 0.85 {
		t.Errorf("ReliabilityScore = %v", report.ReliabilityScore)
	}
	if len(report.FeatureAnalysis) != 2 {
		t.Errorf("FeatureAnalysis = %+v", report.FeatureAnalysis)
	}
	loc := report.FeatureAnalysis["location"]
	if loc.Concerns == nil || !strings.Contains(*loc.Concerns, "timezone") {
		t.Errorf("location concerns = %v", loc.Concerns)
	}
	if report.OverallRecommendations != "mostly reliable" {
		t.Errorf("recommendations = %q", report.OverallRecommendations)
	}

	if !strings.Contains(o.lastReq.Prompt, "reliability_score") {
		t.Error("prompt does not pin the report format")
	}
	if o.lastReq.System != reportSystemInstruction {
		t.Error("report system instruction not used")
	}
}

func TestReportOracleFailure(t *testing.T) {
	o := &mockOracle{err: fmt.Errorf("oracle down")}
	v := New(o, testConfig(), &bytes.Buffer{})

	if _, err := v.Report(context.Background(), "corpus", types.FeatureSet{}); err == nil {
		t.Error("expected error")
	}
}
