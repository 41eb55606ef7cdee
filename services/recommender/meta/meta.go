// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package meta

import (
	"strings"

	"github.com/sglab/samantha/services/recommender/catalog"
)

// UserMeta is the category → keyword mapping extracted from a single query.
// Each recommendation call receives its own UserMeta; instances are never
// merged in place with a prior extraction.
//
// Token lists preserve extraction order with duplicates removed. The
// extractor's prompt bounds cardinality per category; UserMeta does not
// re-enforce that bound.
type UserMeta map[Category][]string

// Add appends tokens to a category, dropping empties, duplicates, and
// unknown categories. Returns the receiver for chaining in tests.
func (m UserMeta) Add(c Category, tokens ...string) UserMeta {
	if !c.Valid() {
		return m
	}
	seen := make(map[string]struct{}, len(m[c]))
	for _, t := range m[c] {
		seen[t] = struct{}{}
	}
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		m[c] = append(m[c], t)
	}
	return m
}

// TotalKeywords counts tokens across all categories. The recommendation
// dispatcher compares this against the sparse-keyword threshold to choose
// between category-overlap scoring and the fallback selector.
func (m UserMeta) TotalKeywords() int {
	n := 0
	for _, tokens := range m {
		n += len(tokens)
	}
	return n
}

// Flatten returns every token across all categories in canonical category
// order. Used by the fallback selector's containment match.
func (m UserMeta) Flatten() []string {
	var out []string
	for _, c := range Categories {
		out = append(out, m[c]...)
	}
	return out
}

// IsEmpty reports whether no category holds any token.
func (m UserMeta) IsEmpty() bool {
	return m.TotalKeywords() == 0
}

// FromItem derives a UserMeta from a reference catalog item by copying all
// of its keyword-category values as desired keywords. The similar-content
// branch scores the rest of the catalog against this derived meta.
func FromItem(it catalog.Item) UserMeta {
	m := UserMeta{}
	for _, c := range Categories {
		m.Add(c, it.Tokens(string(c))...)
	}
	return m
}

// Parse converts extractor output text into a UserMeta. The extractor
// replies with one "Category: token, token" line per category; categories
// outside the closed vocabulary and empty value lists are ignored. Parse
// never fails — malformed lines are skipped, and fully malformed text yields
// an empty UserMeta.
func Parse(text string) UserMeta {
	m := UserMeta{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		name, values, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		c := Category(strings.TrimSpace(strings.TrimLeft(name, "-* ")))
		if !c.Valid() {
			continue
		}
		m.Add(c, strings.Split(values, ",")...)
	}
	return m
}
