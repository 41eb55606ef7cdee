// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package compose turns ranked recommendation sets and retrieved passages
// into natural-language replies. The language model is an opaque
// collaborator; when it is unavailable the package degrades to a templated
// plain listing so the conversational turn still completes.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sglab/samantha/services/llm"
	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/retrieval"
)

// composerPersona is the system role for every composition call.
const composerPersona = "당신은 친구처럼 따뜻하게 공감해주는 콘텐츠 큐레이터입니다."

// maxSummaryItems bounds how many items a reply may reference.
const maxSummaryItems = 5

// Request carries everything one composition call needs.
type Request struct {
	Query    string
	Items    []catalog.Item
	UserName string
	IsRetry  bool
}

// Composer produces the user-facing reply for a recommendation set.
type Composer interface {
	Compose(ctx context.Context, req Request) (string, error)

	// Answer responds to a question using retrieved catalog passages.
	Answer(ctx context.Context, question string, passages []retrieval.Hit) (string, error)
}

// =============================================================================
// LLM Composer
// =============================================================================

// LLMComposer implements Composer over a language model collaborator.
//
// Thread Safety: safe for concurrent use if the underlying client is.
type LLMComposer struct {
	client llm.Client
	logger *slog.Logger
}

// NewLLMComposer creates a composer. A nil logger selects slog.Default().
func NewLLMComposer(client llm.Client, logger *slog.Logger) *LLMComposer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMComposer{client: client, logger: logger}
}

// Compose implements Composer. The prompt instructs the model to reference
// 3–5 of the recommended items with title, synopsis, and keyword hints,
// opening with an empathetic greeting (first recommendation) or an
// updated-pick framing (retry), and closing with an encouragement line.
func (c *LLMComposer) Compose(ctx context.Context, req Request) (string, error) {
	summary := summarize(req.Items)

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "사용자 입력:\n%q\n\n추천된 콘텐츠:\n%s\n\n---\n\n", req.Query, summary)
	if req.IsRetry {
		fmt.Fprintf(&prompt, "당신은 공감형 콘텐츠 큐레이터입니다. 다음 지침을 따라 %s님에게 재추천 응답을 제공해 주세요:\n\n", req.UserName)
		fmt.Fprintf(&prompt, "1. \"%s님, 요청하신 내용을 반영해서 다시 추천해드릴게요.\" 와 같은 도입 문장\n", req.UserName)
		prompt.WriteString("2. 위 추천된 콘텐츠 리스트 중 3~5개를 골라 제목, 줄거리 요약, 관련 키워드를 자연스럽게 소개\n")
		fmt.Fprintf(&prompt, "3. 마지막에는 \"%s님, 이번 추천이 마음에 드셨으면 좋겠어요!\" 와 같은 부드러운 마무리 멘트\n", req.UserName)
		prompt.WriteString("4. 친구처럼 따뜻한 말투와 적절한 이모지를 사용하세요.\n")
	} else {
		fmt.Fprintf(&prompt, "당신은 공감형 콘텐츠 큐레이터입니다. 다음 지침을 따라 %s님에게 따뜻하고 자연스럽게 응답해 주세요:\n\n", req.UserName)
		fmt.Fprintf(&prompt, "1. %s님의 상황에 공감하는 다정한 인사말을 먼저 전하세요.\n", req.UserName)
		prompt.WriteString("2. 위 추천된 콘텐츠 리스트에서 3~5개를 골라 제목, 줄거리 요약, 관련 키워드를 소개하세요.\n")
		fmt.Fprintf(&prompt, "3. 마지막에는 \"%s님을 응원합니다!\"와 같은 응원 문장을 포함하세요.\n", req.UserName)
		prompt.WriteString("4. 친구처럼 부드러운 말투와 이모지를 사용하세요.\n")
	}

	reply, err := c.client.Complete(ctx, composerPersona, prompt.String())
	if err != nil {
		return "", fmt.Errorf("compose: generating recommendation reply: %w", err)
	}
	return reply, nil
}

// Answer implements Composer.
func (c *LLMComposer) Answer(ctx context.Context, question string, passages []retrieval.Hit) (string, error) {
	var prompt strings.Builder
	prompt.WriteString("아래 영화 정보만을 근거로 사용자의 질문에 한국어로 답해 주세요. 정보에 없는 내용은 모른다고 답하세요.\n\n")
	for i, h := range passages {
		fmt.Fprintf(&prompt, "[%d] %s\n%s\n\n", i+1, h.Document.Title, h.Document.Text)
	}
	fmt.Fprintf(&prompt, "질문: %s\n", question)

	reply, err := c.client.Complete(ctx, composerPersona, prompt.String())
	if err != nil {
		return "", fmt.Errorf("compose: answering question: %w", err)
	}
	return reply, nil
}

// summarize renders the content summary block fed to the model: title,
// synopsis, and the Subject/Emotion/atmosphere keyword hints, with
// normalized-title duplicates removed and the count capped.
func summarize(items []catalog.Item) string {
	seen := make(map[string]struct{}, len(items))
	var parts []string
	for _, it := range items {
		key := catalog.NormalizeTitle(it.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		parts = append(parts, fmt.Sprintf(
			"🎬 %d. %s\n✨ 줄거리: %s\n📌 관련 키워드: %s, %s, %s",
			len(parts)+1, it.Title, it.Description, it.Subject, it.Emotion, it.Atmosphere,
		))
		if len(parts) == maxSummaryItems {
			break
		}
	}
	return strings.Join(parts, "\n\n")
}

// =============================================================================
// Templated Fallback
// =============================================================================

// PlainListing is the degraded reply used when the composer collaborator
// is unavailable: a bare numbered listing of the recommended titles.
func PlainListing(userName string, items []catalog.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s님, 이런 영화는 어떠세요?\n", userName)
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}
