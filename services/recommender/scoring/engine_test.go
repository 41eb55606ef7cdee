// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"context"
	"testing"

	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/meta"
)

func richMeta() meta.UserMeta {
	// Five keywords: enough to dispatch to the overlap engine.
	return meta.UserMeta{}.
		Add(meta.Emotion, "감동", "위로").
		Add(meta.Genre, "드라마").
		Add(meta.Atmosphere, "잔잔한").
		Add(meta.Love, "첫사랑")
}

func TestScoreCountsCategoryIntersections(t *testing.T) {
	it := catalog.Item{
		Emotion:    "감동, 슬픔",
		Genre:      "드라마, 로맨스",
		Atmosphere: "긴장감",
	}
	m := richMeta()
	// Matches: 감동 (Emotion), 드라마 (genre). 잔잔한 and 첫사랑 miss.
	if got := Score(&it, m); got != 2 {
		t.Errorf("Score = %d, want 2", got)
	}
}

func TestScoreRequiresExactTokenMatch(t *testing.T) {
	it := catalog.Item{Emotion: "감동적인"}
	m := meta.UserMeta{}.Add(meta.Emotion, "감동")
	// "감동" is a substring of "감동적인" but not an equal token.
	if got := Score(&it, m); got != 0 {
		t.Errorf("Score = %d, want 0 (no partial token matches)", got)
	}
}

func TestRankExcludesZeroScores(t *testing.T) {
	items := []catalog.Item{
		{Title: "무관한 영화", Genre: "공포"},
		{Title: "감동 영화", Emotion: "감동"},
	}
	m := meta.UserMeta{}.Add(meta.Emotion, "감동")
	got := Rank(context.Background(), items, m, DefaultCap)
	if !sameTitles(got, "감동 영화") {
		t.Errorf("Rank = %v, want only the matching item", titlesOf(got))
	}
}

func TestRankOrdersByScoreThenCatalogOrder(t *testing.T) {
	items := []catalog.Item{
		{Title: "한 번 일치", Emotion: "감동"},
		{Title: "두 번 일치 A", Emotion: "감동, 위로"},
		{Title: "두 번 일치 B", Emotion: "감동, 위로"},
	}
	m := meta.UserMeta{}.Add(meta.Emotion, "감동", "위로")
	got := Rank(context.Background(), items, m, DefaultCap)
	if !sameTitles(got, "두 번 일치 A", "두 번 일치 B", "한 번 일치") {
		t.Errorf("Rank = %v; ties must keep catalog order", titlesOf(got))
	}
}

func TestRankCapsResultSet(t *testing.T) {
	items := make([]catalog.Item, 8)
	for i := range items {
		items[i] = catalog.Item{Title: string(rune('A' + i)), Emotion: "감동"}
	}
	m := meta.UserMeta{}.Add(meta.Emotion, "감동")
	got := Rank(context.Background(), items, m, DefaultCap)
	if len(got) != DefaultCap {
		t.Errorf("len(Rank) = %d, want %d", len(got), DefaultCap)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	items := []catalog.Item{
		{Title: "나중", Emotion: "감동"},
		{Title: "먼저", Emotion: "감동, 위로"},
	}
	m := meta.UserMeta{}.Add(meta.Emotion, "감동", "위로")
	Rank(context.Background(), items, m, DefaultCap)
	if items[0].Title != "나중" || items[1].Title != "먼저" {
		t.Error("Rank reordered its input slice")
	}
}

func TestRecommendDispatchesOnKeywordCount(t *testing.T) {
	items := []catalog.Item{
		// Scores 1 against richMeta via the engine; also matched by the
		// fallback's containment.
		{Title: "감동 영화", Emotion: "감동", Rating: 7.0},
		// Zero engine score, but Document contains "드라마" for fallback.
		{Title: "드라마 언급", Description: "드라마 같은 인생 이야기", Rating: 9.0},
	}

	rich := richMeta()
	if rich.TotalKeywords() < KeywordThreshold {
		t.Fatalf("test meta has %d keywords, need >= %d", rich.TotalKeywords(), KeywordThreshold)
	}
	engine := Recommend(context.Background(), items, rich)
	if !sameTitles(engine, "감동 영화") {
		t.Errorf("rich meta should use overlap scoring, got %v", titlesOf(engine))
	}

	sparse := meta.UserMeta{}.Add(meta.Genre, "드라마")
	fallback := Recommend(context.Background(), items, sparse)
	// Fallback matches both (the Document of 드라마 언급 contains 드라마;
	// 감동 영화 does not) and orders by rating.
	if !sameTitles(fallback, "드라마 언급") {
		t.Errorf("sparse meta should use fallback selection, got %v", titlesOf(fallback))
	}
}
