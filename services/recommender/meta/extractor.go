// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package meta

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sglab/samantha/services/llm"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	extractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "samantha",
		Subsystem: "meta",
		Name:      "extraction_failures_total",
		Help:      "Keyword extraction calls that failed and degraded to empty meta",
	})

	extractionKeywords = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "samantha",
		Subsystem: "meta",
		Name:      "extracted_keywords",
		Help:      "Total keywords extracted per query",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})
)

// =============================================================================
// Extractor
// =============================================================================

//go:embed keyword_prompt.txt
var keywordPrompt string

// Extractor turns free text into a UserMeta mapping using the fixed
// controlled vocabulary per category.
//
// Implementations never propagate upstream failure: a failed or malformed
// extraction yields an empty UserMeta so the caller degrades to the
// fallback recommendation path.
type Extractor interface {
	Extract(ctx context.Context, text string) UserMeta
}

// LLMExtractor classifies queries with a language model constrained to the
// embedded controlled-vocabulary prompt.
//
// Thread Safety: safe for concurrent use if the underlying client is.
type LLMExtractor struct {
	client llm.Client
	logger *slog.Logger
}

// NewLLMExtractor creates an extractor over the given collaborator client.
// A nil logger selects slog.Default().
func NewLLMExtractor(client llm.Client, logger *slog.Logger) *LLMExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMExtractor{client: client, logger: logger}
}

// Extract implements Extractor.
func (e *LLMExtractor) Extract(ctx context.Context, text string) UserMeta {
	reply, err := e.client.Complete(ctx, keywordPrompt,
		"사용자 입력:\n"+text+"\n\n위 입력에서 키워드를 정리해 주세요.")
	if err != nil {
		extractionFailures.Inc()
		e.logger.Warn("keyword extraction failed, degrading to empty meta",
			slog.String("error", err.Error()),
		)
		return UserMeta{}
	}

	m := Parse(reply)
	extractionKeywords.Observe(float64(m.TotalKeywords()))
	e.logger.Debug("keyword extraction complete",
		slog.Int("categories", len(m)),
		slog.Int("keywords", m.TotalKeywords()),
	)
	return m
}

// StaticExtractor returns a fixed UserMeta for every query. Used by tests
// and by the similar-content branch, which derives meta from a reference
// item instead of calling the collaborator.
type StaticExtractor struct {
	Meta UserMeta
}

// Extract implements Extractor.
func (s StaticExtractor) Extract(context.Context, string) UserMeta {
	return s.Meta
}
