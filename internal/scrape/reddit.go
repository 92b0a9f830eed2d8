// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape pulls posts and comment trees from Reddit's JSON API and
// writes them as raw batch files for the processing stage. With client
// credentials configured it uses the authenticated OAuth endpoints,
// otherwise the public ones.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/recruit-engine/internal/httputil"
	"github.com/pdiddy/recruit-engine/pkg/types"
)

// API endpoints. Package-level vars for test substitution.
var (
	publicBaseURL = "https://www.reddit.com"
	oauthBaseURL  = "https://oauth.reddit.com"
	tokenURL      = "https://www.reddit.com/api/v1/access_token"
)

const (
	defaultPostLimit = 10
	defaultMaxDepth  = 3
)

// Client talks to the forum API.
type Client struct {
	http  *http.Client
	cfg   types.ScrapeConfig
	base  string
	token string
}

// New returns a Client. Call Authenticate to switch to the OAuth endpoints
// when client credentials are configured.
func New(cfg types.ScrapeConfig) *Client {
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
		base: publicBaseURL,
	}
}

// Authenticate performs the application-only OAuth flow. Without configured
// credentials it is a no-op and the client stays on the public endpoints.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token endpoint returned no access token")
	}

	c.token = token.AccessToken
	c.base = oauthBaseURL
	return nil
}

// listing is the generic envelope the API wraps everything in.
type listing struct {
	Data struct {
		Children []struct {
			Kind string          `json:"kind"`
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type apiPost struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

type apiComment struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	ParentID   string  `json:"parent_id"`
	CreatedUTC float64 `json:"created_utc"`
	Replies    replies `json:"replies"`
}

// replies is either a nested listing or the empty string in API responses.
type replies struct {
	listing *listing
}

func (r *replies) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" || trimmed == `""` || trimmed == "null" {
		return nil
	}
	var l listing
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	r.listing = &l
	return nil
}

// ScrapeCommunity fetches the community's hot posts and each post's comment
// tree, capped at the configured depth. Deleted-author nodes are retained so
// their descendants survive flattening.
func (c *Client) ScrapeCommunity(ctx context.Context, com types.Community) ([]types.Post, error) {
	limit := c.cfg.PostLimit
	if limit <= 0 {
		limit = defaultPostLimit
	}

	var hot listing
	path := fmt.Sprintf("/r/%s/hot.json?limit=%d&raw_json=1", url.PathEscape(com.Name), limit)
	if err := c.getJSON(ctx, path, &hot); err != nil {
		return nil, fmt.Errorf("listing r/%s: %w", com.Name, err)
	}

	var posts []types.Post
	for _, child := range hot.Data.Children {
		var ap apiPost
		if err := json.Unmarshal(child.Data, &ap); err != nil {
			continue
		}

		post := types.Post{
			ID:                ap.ID,
			Author:            ap.Author,
			Title:             ap.Title,
			Text:              ap.Selftext,
			Score:             ap.Score,
			CreatedUTC:        ap.CreatedUTC,
			Community:         com.Name,
			CommunityCategory: com.Category,
		}

		comments, err := c.fetchComments(ctx, ap.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching comments for %s: %w", ap.ID, err)
		}
		post.Comments = comments

		posts = append(posts, post)
		c.pause(ctx)
	}

	return posts, nil
}

// fetchComments pulls one post's comment tree.
func (c *Client) fetchComments(ctx context.Context, postID string) ([]types.Comment, error) {
	// The comments endpoint returns a two-element array: the post listing
	// and the comment listing.
	var payload []listing
	path := fmt.Sprintf("/comments/%s.json?limit=500&raw_json=1", url.PathEscape(postID))
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, nil
	}

	maxDepth := c.cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	return convertListing(&payload[1], 1, maxDepth), nil
}

// convertListing converts a comment listing into the raw batch shape.
// Recursion here is bounded by maxDepth, unlike flattening which must
// handle arbitrary stored trees.
func convertListing(l *listing, depth, maxDepth int) []types.Comment {
	if l == nil || depth > maxDepth {
		return nil
	}

	var out []types.Comment
	for _, child := range l.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var ac apiComment
		if err := json.Unmarshal(child.Data, &ac); err != nil {
			continue
		}
		out = append(out, types.Comment{
			ID:         ac.ID,
			Author:     ac.Author,
			Text:       ac.Body,
			Score:      ac.Score,
			ParentID:   strings.TrimPrefix(strings.TrimPrefix(ac.ParentID, "t1_"), "t3_"),
			CreatedUTC: ac.CreatedUTC,
			Replies:    convertListing(ac.Replies.listing, depth+1, maxDepth),
		})
	}
	return out
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// pause sleeps the configured request delay, returning early on cancel.
func (c *Client) pause(ctx context.Context) {
	if c.cfg.RequestDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.cfg.RequestDelay):
	}
}

// Summary holds counts from one scraping run.
type Summary struct {
	Communities int
	Posts       int
	Failed      int
}

// HasFailures reports whether any community failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// ScrapeAll scrapes every configured community and writes one raw batch
// file per community to cfg.RawDataDir, named
// {community}_{timestamp}.json. One failing community does not block the
// others.
func ScrapeAll(ctx context.Context, c *Client, cfg types.ScrapeConfig, now time.Time, w io.Writer) (Summary, error) {
	if err := os.MkdirAll(cfg.RawDataDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating raw data directory: %w", err)
	}

	timestamp := now.Format("20060102_150405")
	var summary Summary

	for _, com := range cfg.Communities {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		fmt.Fprintf(w, "scraping r/%s\n", com.Name)

		posts, err := c.ScrapeCommunity(ctx, com)
		if err != nil {
			fmt.Fprintf(w, "failed  r/%s: %v\n", com.Name, err)
			summary.Failed++
			continue
		}

		path := filepath.Join(cfg.RawDataDir, fmt.Sprintf("%s_%s.json", com.Name, timestamp))
		if err := writeBatch(path, posts); err != nil {
			fmt.Fprintf(w, "failed  r/%s: %v\n", com.Name, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "scraped r/%s (%d posts)\n", com.Name, len(posts))
		summary.Communities++
		summary.Posts += len(posts)
	}

	fmt.Fprintf(w, "\nscraped: %d communities, %d posts, failed: %d\n",
		summary.Communities, summary.Posts, summary.Failed)

	return summary, nil
}

func writeBatch(path string, posts []types.Post) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling batch: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing batch %s: %w", path, err)
	}
	return nil
}
