// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// Claude calls the Anthropic Messages API. The system instruction is sent as
// the API's top-level system field; the JSON-only requirement rides in the
// prompt since the Messages API has no response-format switch.
type Claude struct {
	APIKey string
	Model  string
	Client *http.Client
}

// NewClaude returns a Claude backend using http.DefaultClient.
func NewClaude(apiKey, model string) *Claude {
	return &Claude{APIKey: apiKey, Model: model}
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends one request and returns the first text block as a raw JSON
// object.
func (c *Claude) Complete(ctx context.Context, oreq Request) (json.RawMessage, error) {
	reqBody := claudeRequest{
		Model:       c.Model,
		MaxTokens:   4096,
		System:      oreq.System,
		Temperature: oreq.Temperature,
		Messages: []claudeMessage{
			{Role: "user", Content: oreq.Prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return nil, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return extractJSONObject(block.Text)
	}

	return nil, fmt.Errorf("no text content in Claude API response")
}

// extractJSONObject validates text as a JSON object, tolerating leading or
// trailing prose around the outermost braces.
func extractJSONObject(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if !json.Valid([]byte(trimmed)) {
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("response is not a JSON object")
		}
		trimmed = trimmed[start : end+1]
		if !json.Valid([]byte(trimmed)) {
			return nil, fmt.Errorf("response is not a JSON object")
		}
	}
	return json.RawMessage(trimmed), nil
}
