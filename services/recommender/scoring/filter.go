// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scoring implements the content scoring and filtering core:
// exclusion filtering against user history, category-overlap relevance
// scoring with deterministic tie-break, and the sparse-keyword fallback
// selector.
package scoring

import (
	"strings"

	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/profile"
)

// Exclusions is the per-call filtering input: everything the user has
// already seen or rejected, plus titles excluded just for this call.
type Exclusions struct {
	// PreviousTitles are titles ever recommended to this user.
	PreviousTitles []string

	// Dislikes are the user's disliked (category, value) pairs. The
	// "title" category joins the title exclusion set; other categories
	// remove items whose field contains the value as literal text.
	Dislikes []profile.Dislike

	// Extra holds titles excluded only for the current call (the retry
	// branch adds the immediately prior recommendation batch here).
	Extra []string
}

// Filter removes items the user must not be recommended again. Title
// comparisons use the normalized form, so annotation variants of a seen
// title are excluded too. Dislike values are matched as literal substrings,
// case-sensitively, against the source keyword formatting — never as
// pattern syntax.
//
// The input slice is never mutated; the result is a fresh slice preserving
// catalog order. Filtering is pure set subtraction, so applying it twice
// yields the same result as applying it once.
func Filter(items []catalog.Item, excl Exclusions) []catalog.Item {
	banned := make(map[string]struct{},
		len(excl.PreviousTitles)+len(excl.Dislikes)+len(excl.Extra))
	for _, t := range excl.PreviousTitles {
		banned[catalog.NormalizeTitle(t)] = struct{}{}
	}
	for _, t := range excl.Extra {
		banned[catalog.NormalizeTitle(t)] = struct{}{}
	}

	var fieldDislikes []profile.Dislike
	for _, d := range excl.Dislikes {
		if d.Category == "title" {
			banned[catalog.NormalizeTitle(d.Value)] = struct{}{}
			continue
		}
		fieldDislikes = append(fieldDislikes, d)
	}

	out := make([]catalog.Item, 0, len(items))
next:
	for _, it := range items {
		if _, skip := banned[catalog.NormalizeTitle(it.Title)]; skip {
			continue
		}
		for _, d := range fieldDislikes {
			if field := it.Field(d.Category); field != "" && strings.Contains(field, d.Value) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}
