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

const snapshotJSON = `[
  {"title": "라라랜드", "rating": 8.9, "Emotion": "설렘, 낭만", "genre": "뮤지컬"},
  {"title": "(더빙) 라라랜드", "rating": 8.9},
  {"title": "인셉션", "rating": 9.1, "genre": "SF, 스릴러", "character_A": "도둑"}
]`

func TestReadParsesSnapshot(t *testing.T) {
	c, err := Read(strings.NewReader(snapshotJSON))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (duplicate dropped)", c.Len())
	}

	it, ok := c.ByTitle("인셉션")
	if !ok {
		t.Fatal("인셉션 missing from catalog")
	}
	if it.Rating != 9.1 {
		t.Errorf("Rating = %v, want 9.1", it.Rating)
	}
	if got := it.Tokens("genre"); len(got) != 2 || got[0] != "SF" {
		t.Errorf("genre tokens = %v", got)
	}
	if got := it.Tokens("character_A"); len(got) != 1 || got[0] != "도둑" {
		t.Errorf("character_A tokens = %v", got)
	}
}

func TestReadRejectsMalformedJSON(t *testing.T) {
	if _, err := Read(strings.NewReader(`{"title": "not an array"}`)); err == nil {
		t.Error("Read should reject a non-array snapshot")
	}
	if _, err := Read(strings.NewReader(`[{"title":`)); err == nil {
		t.Error("Read should reject truncated JSON")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/does_not_exist.json"); err == nil {
		t.Error("Load should fail for a missing file")
	}
}
