// Package services holds the adapters for the local inference backends:
// chat completions and embeddings over an OpenAI-compatible API.
package services

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ljmonteiro/interviewcast/internal/models"
)

// ChatClient talks to an OpenAI-compatible chat completions endpoint, such
// as a llama.cpp server. Two models are configured; callers pick one per
// request via a tier.
type ChatClient struct {
	client         *openai.Client
	fastModel      string
	reasoningModel string
}

func NewChatClient(baseURL, apiKey, fastModel, reasoningModel string) *ChatClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &ChatClient{
		client:         openai.NewClientWithConfig(cfg),
		fastModel:      fastModel,
		reasoningModel: reasoningModel,
	}
}

// Complete runs one chat completion and returns the assistant text.
func (c *ChatClient) Complete(ctx context.Context, tier models.ModelTier, system, user string, maxTokens int, temperature float32) (string, error) {
	model, err := c.resolveModel(tier)
	if err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion (%s): empty choices", model)
	}

	content := resp.Choices[0].Message.Content
	log.Printf("[LLM] %s returned %d chars (finish=%s)", model, len(content), resp.Choices[0].FinishReason)
	return content, nil
}

func (c *ChatClient) resolveModel(tier models.ModelTier) (string, error) {
	switch tier {
	case models.TierFast:
		return c.fastModel, nil
	case models.TierReasoning:
		return c.reasoningModel, nil
	}
	return "", fmt.Errorf("unknown model tier %q: %w", tier, models.ErrConfiguration)
}
