// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog defines the immutable movie catalog loaded once per
// session. Items carry free-text production fields plus the fixed set of
// keyword category fields used by the scoring engine.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// CatalogItem
// =============================================================================

// Item is one recommendable movie. Items are value types and are never
// mutated after the catalog is loaded; scoring produces a separate parallel
// collection of (item, score) pairs instead of annotating the item.
//
// Title is the identity key within a session's catalog. Identity comparisons
// (duplicate suppression, exclusion) always go through NormalizeTitle so that
// titles differing only in release annotations compare equal.
type Item struct {
	Title       string  `json:"title"`
	ContentID   string  `json:"content_id"`
	Description string  `json:"description"`
	Actor       string  `json:"actor"`
	Director    string  `json:"director"`
	Producer    string  `json:"cp_name"`
	Rating      float64 `json:"rating"`
	RunningTime int     `json:"running_time"`

	Emotion        string `json:"Emotion"`
	Subject        string `json:"Subject"`
	Atmosphere     string `json:"atmosphere"`
	Background     string `json:"background"`
	CharacterA     string `json:"character_A"`
	CharacterB     string `json:"character_B"`
	CharacterC     string `json:"character_C"`
	Criminal       string `json:"criminal"`
	Family         string `json:"family"`
	Genre          string `json:"genre"`
	Love           string `json:"love"`
	NaturalScience string `json:"natural_science"`
	Religion       string `json:"religion"`
	SocialCulture  string `json:"social_culture"`
	Style          string `json:"style"`
}

// Field returns the comma-joined token list for a keyword category column.
// Unknown category names return "" — the boundary with the keyword extractor
// ignores categories outside the fixed vocabulary, so an empty string here is
// never an error.
func (it *Item) Field(category string) string {
	switch category {
	case "Emotion":
		return it.Emotion
	case "Subject":
		return it.Subject
	case "atmosphere":
		return it.Atmosphere
	case "background":
		return it.Background
	case "character_A":
		return it.CharacterA
	case "character_B":
		return it.CharacterB
	case "character_C":
		return it.CharacterC
	case "criminal":
		return it.Criminal
	case "family":
		return it.Family
	case "genre":
		return it.Genre
	case "love":
		return it.Love
	case "natural_science":
		return it.NaturalScience
	case "religion":
		return it.Religion
	case "social_culture":
		return it.SocialCulture
	case "style":
		return it.Style
	default:
		return ""
	}
}

// Tokens splits a keyword category field into trimmed tokens. Empty tokens
// (trailing commas, double commas in source data) are dropped.
func (it *Item) Tokens(category string) []string {
	raw := it.Field(category)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Document renders the full textual representation of the item: every
// production field plus every keyword category. The fallback selector matches
// against this rendering, and the retrieval indexes ingest it.
func (it *Item) Document() string {
	var b strings.Builder
	fmt.Fprintf(&b, "제목: %q\n", it.Title)
	fmt.Fprintf(&b, "감독/연출: %q\n", it.Director)
	fmt.Fprintf(&b, "출연/배우: %q\n", it.Actor)
	fmt.Fprintf(&b, "제작/배급사: %q\n", it.Producer)
	fmt.Fprintf(&b, "평점: %q\n", fmt.Sprintf("%.1f", it.Rating))
	fmt.Fprintf(&b, "러닝타임(분): %q\n", fmt.Sprintf("%d", it.RunningTime))
	fmt.Fprintf(&b, "줄거리: %q\n", it.Description)
	b.WriteString("메타:\n")
	fmt.Fprintf(&b, "- 주제: %q\n", it.Subject)
	fmt.Fprintf(&b, "- 장르: %q\n", it.Genre)
	fmt.Fprintf(&b, "- 감정: %q\n", it.Emotion)
	fmt.Fprintf(&b, "- 분위기: %q\n", it.Atmosphere)
	fmt.Fprintf(&b, "- 캐릭터: %q\n", it.CharacterA)
	fmt.Fprintf(&b, "- 판타지적 요소: %q\n", it.CharacterB)
	fmt.Fprintf(&b, "- 직업적 요소: %q\n", it.CharacterC)
	fmt.Fprintf(&b, "- 사랑 요소: %q\n", it.Love)
	fmt.Fprintf(&b, "- 가족 요소: %q\n", it.Family)
	fmt.Fprintf(&b, "- 범죄 요소: %q\n", it.Criminal)
	fmt.Fprintf(&b, "- 사회 요소: %q\n", it.SocialCulture)
	fmt.Fprintf(&b, "- 자연 요소: %q\n", it.NaturalScience)
	fmt.Fprintf(&b, "- 배경 요소: %q\n", it.Background)
	fmt.Fprintf(&b, "- 종교 요소: %q\n", it.Religion)
	fmt.Fprintf(&b, "- 영화 스타일: %q\n", it.Style)
	return b.String()
}

// =============================================================================
// Title Normalization
// =============================================================================

// annotationPrefix matches release annotations prepended to titles by the
// catalog source: (더빙), [자막], 극장판 and the bare forms without brackets.
var annotationPrefix = regexp.MustCompile(`^[\(\[]?(더빙|자막|극장판)[\)\]]?\s*`)

// titleFold strips everything except word characters, whitespace, and Hangul.
var titleFold = regexp.MustCompile(`[^\w\s가-힣]`)

// NormalizeTitle strips leading bracketed release annotations and surrounding
// whitespace. Two titles with equal normalized forms are the same entity for
// exclusion and duplicate suppression.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(annotationPrefix.ReplaceAllString(title, ""))
}

// FoldTitle reduces a title to a loose comparison form: punctuation removed,
// lowercased. The completion branch folds the user's remaining text and
// looks it up inside each folded title, so "완료 인셉션" still matches
// "인셉션: 디렉터스 컷".
func FoldTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(titleFold.ReplaceAllString(title, "")))
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog is the static snapshot of recommendable items for a session.
// Read-only after load; safe for concurrent reads from multiple sessions.
type Catalog struct {
	items []Item
	index map[string]int // normalized title → position
}

// New builds a Catalog from a slice of items, preserving order. Order is
// load-bearing: the scoring engine's tie-break is original catalog order.
// Later items with a normalized title already present are dropped.
func New(items []Item) *Catalog {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, it := range items {
		key := NormalizeTitle(it.Title)
		if key == "" {
			continue
		}
		if _, dup := c.index[key]; dup {
			continue
		}
		c.index[key] = len(c.items)
		c.items = append(c.items, it)
	}
	return c
}

// Items returns the catalog contents in load order. Callers must not mutate
// the returned slice.
func (c *Catalog) Items() []Item {
	return c.items
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// ByTitle looks an item up by normalized title.
func (c *Catalog) ByTitle(title string) (Item, bool) {
	i, ok := c.index[NormalizeTitle(title)]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}
