// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAI calls the Chat Completions API with JSON response format enforced,
// matching the contract the extraction and validation prompts assume.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI returns an OpenAI backend for the given model.
func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete sends one request and returns the message content as a raw JSON
// object.
func (o *OpenAI) Complete(ctx context.Context, oreq Request) (json.RawMessage, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(oreq.System),
			openai.UserMessage(oreq.Prompt),
		},
		Temperature: openai.Float(oreq.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI API returned no choices")
	}

	return extractJSONObject(resp.Choices[0].Message.Content)
}
