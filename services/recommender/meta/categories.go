// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package meta defines the keyword category vocabulary and the UserMeta
// mapping produced by the keyword extractor for a single query.
package meta

// Category identifies one keyword category column. The set is closed: the
// extractor boundary rejects anything outside it, and the scoring engine
// only ever consults these fifteen columns.
type Category string

const (
	Emotion        Category = "Emotion"
	Subject        Category = "Subject"
	Atmosphere     Category = "atmosphere"
	Background     Category = "background"
	CharacterA     Category = "character_A"
	CharacterB     Category = "character_B"
	CharacterC     Category = "character_C"
	Criminal       Category = "criminal"
	Family         Category = "family"
	Genre          Category = "genre"
	Love           Category = "love"
	NaturalScience Category = "natural_science"
	Religion       Category = "religion"
	SocialCulture  Category = "social_culture"
	Style          Category = "style"
)

// Categories lists every category in canonical column order.
var Categories = []Category{
	Emotion, Subject, Atmosphere, Background,
	CharacterA, CharacterB, CharacterC,
	Criminal, Family, Genre, Love,
	NaturalScience, Religion, SocialCulture, Style,
}

var categorySet = func() map[Category]struct{} {
	s := make(map[Category]struct{}, len(Categories))
	for _, c := range Categories {
		s[c] = struct{}{}
	}
	return s
}()

// Valid reports whether c is one of the fifteen known categories.
func (c Category) Valid() bool {
	_, ok := categorySet[c]
	return ok
}
