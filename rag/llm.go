// Package rag implements the query-time pipeline: keyword expansion,
// multi-query vector retrieval, and LLM timestamp ranking.
package rag

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"videoSeek/config"
	"videoSeek/core"
)

// Completer is a synchronous text completion function. Both the keyword
// expander and the timestamp ranker run on it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter calls an OpenAI-compatible chat completion endpoint
// with a single user message at temperature zero.
type OpenAICompleter struct {
	cli   *openai.Client
	model string
}

func NewOpenAICompleter(cfg *config.Config) *OpenAICompleter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAICompleter{
		cli:   openai.NewClientWithConfig(clientConfig),
		model: cfg.ChatModel,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// A literal 0 would be dropped by omitempty and fall back to
		// the provider default; the smallest float requests real zero.
		Temperature: math.SmallestNonzeroFloat32,
	}
	resp, err := c.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", core.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", core.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}
