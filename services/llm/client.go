// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm wraps the external text-in/text-out language model services
// the recommendation core depends on (keyword extraction, response
// composition, retrieval question answering). The core treats these calls
// as opaque collaborators: blocking, I/O-bound, and always recoverable.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Client is the minimal surface the recommendation core needs from a
// language model: one system-prompted completion per call.
//
// Thread Safety: implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a system prompt and a user message, returning the
	// model's text reply.
	Complete(ctx context.Context, system, user string) (string, error)
}

// =============================================================================
// OpenAI-compatible client (langchaingo)
// =============================================================================

// defaultModel matches the model the deployed extraction prompt was tuned on.
const defaultModel = "gpt-4.1-mini"

// defaultTemperature keeps extraction and composition output stable enough
// for the line parser while leaving room for phrasing variety.
const defaultTemperature = 0.3

// OpenAIClient implements Client over the OpenAI chat completions API via
// langchaingo.
//
// Outbound calls are rate limited so a chatty session cannot exhaust the
// account quota; the limiter blocks (honoring ctx) rather than failing.
//
// Thread Safety: OpenAIClient is safe for concurrent use.
type OpenAIClient struct {
	model       llms.Model
	limiter     *rate.Limiter
	temperature float64
}

// NewOpenAIClient creates an OpenAIClient from environment variables.
// Reads OPENAI_API_KEY and OPENAI_MODEL; the model defaults to gpt-4.1-mini.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		slog.Warn("OpenAI API key is empty. LLM collaborators will not function.")
		return nil, fmt.Errorf("llm: API key is missing (OPENAI_API_KEY)")
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
		slog.Warn("OPENAI_MODEL not set, defaulting", slog.String("model", model))
	}

	lc, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("llm: constructing openai client: %w", err)
	}

	slog.Info("Initializing LLM client", slog.String("model", model))
	return &OpenAIClient{
		model: lc,
		// 2 requests/second sustained, burst of 4: a single conversational
		// turn issues at most two calls (extract + compose).
		limiter:     rate.NewLimiter(rate.Limit(2), 4),
		temperature: defaultTemperature,
	}, nil
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm: rate limiter: %w", err)
	}

	slog.Debug("LLM completion request",
		slog.Int("system_len", len(system)),
		slog.Int("user_len", len(user)),
	)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := c.model.GenerateContent(ctx, messages, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", fmt.Errorf("llm: generating completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: model returned no choices")
	}

	slog.Debug("LLM completion response", slog.Int("response_len", len(resp.Choices[0].Content)))
	return resp.Choices[0].Content, nil
}
