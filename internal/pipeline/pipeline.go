// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline processes raw batch files end to end: flatten
// conversation trees, extract and validate per-author features, and upsert
// user records into the store. Batches already carrying a completion marker
// are skipped, giving idempotent re-processing at file granularity.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/recruit-engine/internal/extract"
	"github.com/pdiddy/recruit-engine/internal/flatten"
	"github.com/pdiddy/recruit-engine/internal/store"
	"github.com/pdiddy/recruit-engine/internal/validate"
	"github.com/pdiddy/recruit-engine/pkg/types"
)

const (
	rawSuffix    = ".json"
	markerSuffix = ".processed"
)

// Summary holds counts from one processing pass.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
	Users     int
}

// Total returns the number of batch files considered.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any batch failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Deps bundles the pipeline's collaborators. The store must be open; the
// pipeline loads it before the pass and persists it after.
type Deps struct {
	Extractor *extract.Extractor
	Validator *validate.Validator
	Store     *store.Store
}

// Process runs one pass over every unprocessed raw batch file. Per-author
// oracle failures degrade to warnings and the author's record is still
// upserted with whatever was produced; a malformed batch file fails that
// batch only. The store is mutated entirely in memory and persisted once at
// the end, so a crash mid-run loses the pass's updates and the unmarked
// batches are re-processed on retry.
func Process(ctx context.Context, deps Deps, cfg types.ProcessConfig, w io.Writer) (Summary, error) {
	if err := os.MkdirAll(cfg.ProcessedDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating processed directory: %w", err)
	}

	entries, err := os.ReadDir(cfg.RawDataDir)
	if err != nil {
		return Summary{}, fmt.Errorf("reading raw data directory %s: %w", cfg.RawDataDir, err)
	}

	if err := deps.Store.Load(); err != nil {
		return Summary{}, fmt.Errorf("loading user store: %w", err)
	}

	var summary Summary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), rawSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		batch := strings.TrimSuffix(entry.Name(), rawSuffix)
		markerPath := filepath.Join(cfg.ProcessedDir, batch+markerSuffix)

		if _, err := os.Stat(markerPath); err == nil {
			fmt.Fprintf(w, "skipped %s\n", batch)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "processing %s\n", batch)

		users, err := processBatch(ctx, deps, filepath.Join(cfg.RawDataDir, entry.Name()), w)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", batch, err)
			summary.Failed++
			continue
		}

		if err := writeMarker(markerPath); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", batch, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "processed %s (%d users)\n", batch, users)
		summary.Processed++
		summary.Users += users
	}

	if err := deps.Store.Persist(); err != nil {
		return summary, fmt.Errorf("persisting user store: %w", err)
	}

	fmt.Fprintf(w, "\nprocessed: %d, skipped: %d, failed: %d, users upserted: %d\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.Users)

	return summary, nil
}

// processBatch flattens one raw batch file and upserts a record per author.
func processBatch(ctx context.Context, deps Deps, path string, w io.Writer) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading batch: %w", err)
	}

	var posts []types.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return 0, fmt.Errorf("parsing batch: %w", err)
	}

	contents := flatten.Flatten(posts)

	// Deterministic author order for reproducible logs.
	authors := make([]string, 0, len(contents))
	for author := range contents {
		authors = append(authors, author)
	}
	sort.Strings(authors)

	now := time.Now().UTC()
	for _, author := range authors {
		fragments := contents[author]
		corpus := buildCorpus(fragments)

		features, err := deps.Extractor.Extract(ctx, corpus)
		if err != nil {
			fmt.Fprintf(w, "  warning: extraction failed for user %s: %v\n", author, err)
		}

		valid, features, err := deps.Validator.Validate(ctx, corpus, features)
		if err != nil {
			fmt.Fprintf(w, "  warning: validation failed for user %s: %v\n", author, err)
		} else if !valid {
			fmt.Fprintf(w, "  warning: potential hallucinated features for user %s\n", author)
		}

		deps.Store.Upsert(buildRecord(deps.Store, author, features, flatten.Metrics(fragments), now))
	}

	return len(authors), nil
}

// buildCorpus concatenates an author's fragments, each tagged with its
// source community so the oracle can attribute statements.
func buildCorpus(fragments []types.ContentFragment) string {
	parts := make([]string, len(fragments))
	for i, frag := range fragments {
		parts[i] = fmt.Sprintf("[r/%s] %s", frag.Community, frag.Content)
	}
	return strings.Join(parts, "\n---\n")
}

// buildRecord assembles the terminal user record. The creation timestamp of
// an existing record survives replacement; everything else is recomputed.
func buildRecord(s *store.Store, author string, features types.FeatureSet, eng flatten.Engagement, now time.Time) types.UserRecord {
	createdAt := now
	if existing, ok := s.Get(author); ok {
		createdAt = existing.CreatedAt
	}

	return types.UserRecord{
		UserID:             author,
		Username:           author,
		CreatedAt:          createdAt,
		UpdatedAt:          now,
		Features:           features,
		NumComments:        eng.NumComments,
		AvgScore:           eng.AvgScore,
		ConversationDepth:  eng.MaxDepth,
		ConversationCount:  eng.ConversationCount,
		ParentInteractions: eng.ParentInteractions,
		CommunityTypes:     eng.CommunityTypes,
	}
}

func writeMarker(path string) error {
	return os.WriteFile(path, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644)
}
