// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"context"
	"testing"
)

func TestGetIntentConfigLoadsEmbeddedDefaults(t *testing.T) {
	ResetIntentConfig()
	defer ResetIntentConfig()

	cfg, err := GetIntentConfig(context.Background())
	if err != nil {
		t.Fatalf("GetIntentConfig: %v", err)
	}
	if cfg.CompletionToken != "완료" {
		t.Errorf("CompletionToken = %q", cfg.CompletionToken)
	}
	if len(cfg.ExitPhrases) == 0 || len(cfg.RecommendContains) == 0 {
		t.Error("embedded defaults missing pattern lists")
	}

	again, err := GetIntentConfig(context.Background())
	if err != nil {
		t.Fatalf("GetIntentConfig (cached): %v", err)
	}
	if again != cfg {
		t.Error("second call should return the cached instance")
	}
}

func TestSimilarTitleExtraction(t *testing.T) {
	ResetIntentConfig()
	defer ResetIntentConfig()

	cfg, err := GetIntentConfig(context.Background())
	if err != nil {
		t.Fatalf("GetIntentConfig: %v", err)
	}

	cases := []struct {
		query     string
		wantTitle string
		wantOK    bool
	}{
		{"인셉션이랑 비슷한 영화 추천해줘", "인셉션", true},
		{"라라랜드 같은 영화 있어?", "라라랜드", true},
		{"추천해줘", "", false},
	}
	for _, tc := range cases {
		title, ok := cfg.SimilarTitle(tc.query)
		if ok != tc.wantOK {
			t.Errorf("SimilarTitle(%q) ok = %v, want %v", tc.query, ok, tc.wantOK)
			continue
		}
		if ok && title != tc.wantTitle {
			t.Errorf("SimilarTitle(%q) = %q, want %q", tc.query, title, tc.wantTitle)
		}
	}
}

func TestLoadIntentConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty data", ""},
		{"malformed yaml", "exit_phrases: [unclosed"},
		{"missing completion token", `
exit_phrases: [exit]
follow_up_contains: [이 중에]
similar_patterns: ['(.+?) 같은 영화']
retry_exclude_contains: [빼고]
retry_merge_contains: [다시 추천]
recommend_contains: [추천해줘]
`},
		{"pattern without capture group", `
completion_token: 완료
exit_phrases: [exit]
follow_up_contains: [이 중에]
similar_patterns: ['같은 영화']
retry_exclude_contains: [빼고]
retry_merge_contains: [다시 추천]
recommend_contains: [추천해줘]
`},
		{"invalid regex", `
completion_token: 완료
exit_phrases: [exit]
follow_up_contains: [이 중에]
similar_patterns: ['(.+?ZZZ']
retry_exclude_contains: [빼고]
retry_merge_contains: [다시 추천]
recommend_contains: [추천해줘]
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadIntentConfig(context.Background(), []byte(tc.yaml)); err == nil {
				t.Errorf("LoadIntentConfig accepted %s", tc.name)
			}
		})
	}
}
