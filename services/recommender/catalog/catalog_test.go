// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"strings"
	"testing"
)

func makeTestItem(title string) Item {
	return Item{
		Title:       title,
		Description: "테스트 줄거리",
		Actor:       "김배우",
		Director:    "이감독",
		Rating:      8.5,
		Emotion:     "감동, 따뜻함",
		Genre:       "드라마",
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(더빙) 인사이드 아웃", "인사이드 아웃"},
		{"(자막) 인사이드 아웃", "인사이드 아웃"},
		{"[극장판] 귀멸의 칼날", "귀멸의 칼날"},
		{"더빙 인사이드 아웃", "인사이드 아웃"},
		{"인사이드 아웃", "인사이드 아웃"},
		{"  라라랜드  ", "라라랜드"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTitleAnnotationVariantsCompareEqual(t *testing.T) {
	if NormalizeTitle("(더빙) 라라랜드") != NormalizeTitle("(자막) 라라랜드") {
		t.Error("annotation variants of the same title should normalize equal")
	}
}

func TestFoldTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"인셉션: 디렉터스 컷", "인셉션 디렉터스 컷"},
		{"La La Land!", "la la land"},
		{"완료. 라라랜드", "완료 라라랜드"},
	}
	for _, tc := range cases {
		if got := FoldTitle(tc.in); got != tc.want {
			t.Errorf("FoldTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTokensSplitsAndTrims(t *testing.T) {
	it := Item{Emotion: "감동, 따뜻함,, 위로 ,"}
	got := it.Tokens("Emotion")
	want := []string{"감동", "따뜻함", "위로"}
	if len(got) != len(want) {
		t.Fatalf("Tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFieldUnknownCategory(t *testing.T) {
	it := makeTestItem("라라랜드")
	if got := it.Field("nonexistent"); got != "" {
		t.Errorf("Field(unknown) = %q, want empty", got)
	}
	if got := it.Tokens("nonexistent"); got != nil {
		t.Errorf("Tokens(unknown) = %v, want nil", got)
	}
}

func TestDocumentRendersAllFields(t *testing.T) {
	it := makeTestItem("라라랜드")
	doc := it.Document()
	for _, want := range []string{"라라랜드", "이감독", "김배우", "테스트 줄거리", "드라마", "8.5"} {
		if !strings.Contains(doc, want) {
			t.Errorf("Document() missing %q", want)
		}
	}
}

func TestNewDropsDuplicatesAndEmptyTitles(t *testing.T) {
	c := New([]Item{
		makeTestItem("라라랜드"),
		makeTestItem("(더빙) 라라랜드"), // same entity after normalization
		makeTestItem(""),
		makeTestItem("인셉션"),
	})
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.Items()[0].Title != "라라랜드" || c.Items()[1].Title != "인셉션" {
		t.Errorf("load order not preserved: %q, %q", c.Items()[0].Title, c.Items()[1].Title)
	}
}

func TestByTitleNormalizes(t *testing.T) {
	c := New([]Item{makeTestItem("라라랜드")})
	if _, ok := c.ByTitle("(자막) 라라랜드"); !ok {
		t.Error("ByTitle should resolve annotation variants")
	}
	if _, ok := c.ByTitle("없는 영화"); ok {
		t.Error("ByTitle resolved a title that is not in the catalog")
	}
}
