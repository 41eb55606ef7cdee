// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the data-driven intent classification rules. Branch
// predicates are configuration, not control flow, so they can be unit
// tested and extended without touching the router.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// MaxYAMLFileSize bounds a rules file. A legitimate rules file is a few KB.
const MaxYAMLFileSize = 1 << 20 // 1 MiB

//go:embed intent_rules.yaml
var defaultIntentRulesYAML []byte

// =============================================================================
// Intent Configuration Types
// =============================================================================

// IntentConfig holds every pattern list the dialogue router's branch
// predicates consult. The router's priority order is fixed in code; this
// config only defines what each predicate matches.
//
// Thread Safety: immutable after loading; safe for concurrent use.
type IntentConfig struct {
	// ExitPhrases are exact whole-query exit utterances (case-insensitive).
	ExitPhrases []string `yaml:"exit_phrases"`

	// FarewellContains are fragments that end the session when present
	// anywhere in the query.
	FarewellContains []string `yaml:"farewell_contains"`

	// CompletionToken is the literal token marking a completion turn.
	CompletionToken string `yaml:"completion_token"`

	// FollowUpContains are referential fragments marking a follow-up
	// question about the previous recommendation set.
	FollowUpContains []string `yaml:"follow_up_contains"`

	// SimilarPatterns match "similar to <X>" requests; the first capture
	// group extracts the reference title.
	SimilarPatterns []string `yaml:"similar_patterns"`

	// RetryExcludeContains are retry phrasings that also reject the prior
	// batch ("빼고", "제외").
	RetryExcludeContains []string `yaml:"retry_exclude_contains"`

	// RetryMergeContains are retry phrasings asking for a different batch.
	RetryMergeContains []string `yaml:"retry_merge_contains"`

	// RecommendContains are recommendation-request phrasings.
	RecommendContains []string `yaml:"recommend_contains"`

	// MovieInfoContains are production-info phrasings (actor, director,
	// plot) that select the production-column filter path.
	MovieInfoContains []string `yaml:"movie_info_contains"`

	// compiledSimilar holds the pre-compiled SimilarPatterns.
	compiledSimilar []*regexp.Regexp
}

// SimilarTitle extracts the reference title from a "similar to <X>" query,
// trying each pattern in order. Returns ("", false) when no pattern matches.
func (c *IntentConfig) SimilarTitle(query string) (string, bool) {
	for _, re := range c.compiledSimilar {
		if m := re.FindStringSubmatch(query); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// =============================================================================
// Singleton Accessor
// =============================================================================

var (
	intentConfigMu      sync.RWMutex
	cachedIntentConfig  *IntentConfig
	intentConfigLoadErr error
)

// GetIntentConfig returns the cached intent rules, loading the embedded
// defaults on first call.
//
// Thread Safety: safe for concurrent use.
func GetIntentConfig(ctx context.Context) (*IntentConfig, error) {
	intentConfigMu.RLock()
	if cachedIntentConfig != nil || intentConfigLoadErr != nil {
		cfg, err := cachedIntentConfig, intentConfigLoadErr
		intentConfigMu.RUnlock()
		return cfg, err
	}
	intentConfigMu.RUnlock()

	intentConfigMu.Lock()
	defer intentConfigMu.Unlock()
	if cachedIntentConfig == nil && intentConfigLoadErr == nil {
		cachedIntentConfig, intentConfigLoadErr = LoadIntentConfig(ctx, defaultIntentRulesYAML)
	}
	return cachedIntentConfig, intentConfigLoadErr
}

// ResetIntentConfig clears the cached rules so tests can reload with
// different data.
func ResetIntentConfig() {
	intentConfigMu.Lock()
	defer intentConfigMu.Unlock()
	cachedIntentConfig = nil
	intentConfigLoadErr = nil
}

// LoadIntentConfig parses and validates an IntentConfig from YAML bytes.
func LoadIntentConfig(_ context.Context, data []byte) (*IntentConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("LoadIntentConfig: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadIntentConfig: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var cfg IntentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadIntentConfig: parsing YAML: %w", err)
	}

	if err := validateIntentConfig(&cfg); err != nil {
		return nil, fmt.Errorf("LoadIntentConfig: validation: %w", err)
	}

	cfg.compiledSimilar = make([]*regexp.Regexp, 0, len(cfg.SimilarPatterns))
	for i, pattern := range cfg.SimilarPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("LoadIntentConfig: similar_patterns[%d] %q: %w", i, pattern, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("LoadIntentConfig: similar_patterns[%d] %q: missing title capture group", i, pattern)
		}
		cfg.compiledSimilar = append(cfg.compiledSimilar, re)
	}

	slog.Info("intent rules loaded",
		slog.Int("exit_phrases", len(cfg.ExitPhrases)),
		slog.Int("follow_up", len(cfg.FollowUpContains)),
		slog.Int("similar_patterns", len(cfg.SimilarPatterns)),
		slog.Int("recommend", len(cfg.RecommendContains)),
	)
	return &cfg, nil
}

func validateIntentConfig(cfg *IntentConfig) error {
	if cfg.CompletionToken == "" {
		return fmt.Errorf("completion_token must not be empty")
	}
	lists := []struct {
		name   string
		values []string
	}{
		{"exit_phrases", cfg.ExitPhrases},
		{"follow_up_contains", cfg.FollowUpContains},
		{"similar_patterns", cfg.SimilarPatterns},
		{"retry_exclude_contains", cfg.RetryExcludeContains},
		{"retry_merge_contains", cfg.RetryMergeContains},
		{"recommend_contains", cfg.RecommendContains},
	}
	for _, l := range lists {
		if len(l.values) == 0 {
			return fmt.Errorf("%s must not be empty", l.name)
		}
		for i, v := range l.values {
			if v == "" {
				return fmt.Errorf("%s[%d] must not be empty", l.name, i)
			}
		}
	}
	return nil
}
