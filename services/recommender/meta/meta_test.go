// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package meta

import (
	"context"
	"errors"
	"testing"

	"github.com/sglab/samantha/services/recommender/catalog"
)

func TestAddDedupAndTrim(t *testing.T) {
	m := UserMeta{}.Add(Emotion, " 감동 ", "감동", "", "위로")
	if got := m[Emotion]; len(got) != 2 || got[0] != "감동" || got[1] != "위로" {
		t.Errorf("Add produced %v, want [감동 위로]", got)
	}
}

func TestAddRejectsUnknownCategory(t *testing.T) {
	m := UserMeta{}.Add(Category("mood"), "uplifting")
	if !m.IsEmpty() {
		t.Errorf("unknown category should be ignored, got %v", m)
	}
}

func TestTotalKeywordsAndFlatten(t *testing.T) {
	m := UserMeta{}.
		Add(Genre, "드라마", "로맨스").
		Add(Emotion, "설렘")
	if got := m.TotalKeywords(); got != 3 {
		t.Errorf("TotalKeywords = %d, want 3", got)
	}
	// Flatten follows canonical category order: Emotion before genre.
	flat := m.Flatten()
	if len(flat) != 3 || flat[0] != "설렘" || flat[1] != "드라마" {
		t.Errorf("Flatten = %v", flat)
	}
}

func TestFromItemCopiesKeywordColumns(t *testing.T) {
	it := catalog.Item{
		Title:   "라라랜드",
		Emotion: "설렘, 낭만",
		Genre:   "뮤지컬",
		Actor:   "배우 이름", // production field, not a keyword column
	}
	m := FromItem(it)
	if got := m[Emotion]; len(got) != 2 {
		t.Errorf("Emotion = %v", got)
	}
	if got := m[Genre]; len(got) != 1 || got[0] != "뮤지컬" {
		t.Errorf("Genre = %v", got)
	}
	if got := m.TotalKeywords(); got != 3 {
		t.Errorf("TotalKeywords = %d, want 3", got)
	}
}

func TestParseExtractorReply(t *testing.T) {
	text := "Emotion: 설렘, 위로\n- genre: 드라마\n* love: 첫사랑\nmood: ignored\nnot a line\n"
	m := Parse(text)
	if got := m[Emotion]; len(got) != 2 || got[0] != "설렘" {
		t.Errorf("Emotion = %v", got)
	}
	if got := m[Genre]; len(got) != 1 || got[0] != "드라마" {
		t.Errorf("genre = %v", got)
	}
	if got := m[Love]; len(got) != 1 || got[0] != "첫사랑" {
		t.Errorf("love = %v", got)
	}
	if got := m.TotalKeywords(); got != 4 {
		t.Errorf("TotalKeywords = %d, want 4", got)
	}
}

func TestParseMalformedTextYieldsEmptyMeta(t *testing.T) {
	if m := Parse("완전히 잘못된 출력"); !m.IsEmpty() {
		t.Errorf("Parse of malformed text = %v, want empty", m)
	}
}

// failingClient always errors; the extractor must absorb that.
type failingClient struct{}

func (failingClient) Complete(context.Context, string, string) (string, error) {
	return "", errors.New("model unavailable")
}

type cannedClient struct{ reply string }

func (c cannedClient) Complete(context.Context, string, string) (string, error) {
	return c.reply, nil
}

func TestLLMExtractorFailureYieldsEmptyMeta(t *testing.T) {
	e := NewLLMExtractor(failingClient{}, nil)
	m := e.Extract(context.Background(), "우울한 날 볼만한 영화 추천해줘")
	if !m.IsEmpty() {
		t.Errorf("extractor failure should yield empty meta, got %v", m)
	}
}

func TestLLMExtractorParsesReply(t *testing.T) {
	e := NewLLMExtractor(cannedClient{reply: "Emotion: 우울, 위로\ngenre: 드라마"}, nil)
	m := e.Extract(context.Background(), "우울한 날 볼만한 영화 추천해줘")
	if got := m.TotalKeywords(); got != 3 {
		t.Errorf("TotalKeywords = %d, want 3", got)
	}
}
