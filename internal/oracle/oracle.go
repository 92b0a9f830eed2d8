// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle abstracts the language-model services the pipeline calls
// for feature extraction and validation. Each backend takes a structured
// prompt and returns the raw JSON object the model emitted, so extraction
// and validation logic is testable against a fake oracle returning canned
// responses.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/recruit-engine/pkg/types"
)

// Request is one oracle round-trip: a system instruction, a user prompt,
// and a sampling temperature. The model is expected to answer with a single
// JSON object and nothing else.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Oracle is the single-method capability injected into the extractor and
// validator. Complete blocks for the full round-trip; the response is the
// raw JSON object, already checked for syntactic validity.
type Oracle interface {
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}

// New constructs the backend selected by cfg.Provider.
func New(cfg types.OracleConfig) (Oracle, error) {
	switch cfg.Provider {
	case types.ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.Model), nil
	case types.ProviderAnthropic:
		return NewClaude(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}

// backoffBase controls the base duration for exponential backoff between
// oracle retries. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// CompleteWithRetry calls the oracle with exponential backoff between
// attempts. When maxRetries is not positive the default (3) is used.
func CompleteWithRetry(ctx context.Context, o Oracle, req Request, maxRetries int) (json.RawMessage, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := o.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
