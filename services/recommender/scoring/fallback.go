// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/meta"
)

// SelectFallback is the degraded recommendation strategy for sparse
// extractions. All keyword tokens across all categories are flattened and
// matched case-insensitively as literal substrings against the entire
// textual representation of each item — every field, not just keyword
// columns. Any single match admits the item; rating breaks the ordering,
// descending, with catalog order as the stable tie-break.
//
// An empty meta yields an empty result (there is nothing to match on, and
// recommending by rating alone would not reflect the query at all).
func SelectFallback(ctx context.Context, m meta.UserMeta, items []catalog.Item, topN int) []catalog.Item {
	_, span := scoringTracer.Start(ctx, "scoring.SelectFallback")
	defer span.End()

	if topN <= 0 {
		topN = DefaultFallbackTop
	}

	keywords := m.Flatten()
	if len(keywords) == 0 {
		span.SetAttributes(attribute.Int("keywords", 0))
		return nil
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	matched := make([]catalog.Item, 0, topN)
	for _, it := range items {
		doc := strings.ToLower(it.Document())
		for _, kw := range lowered {
			if strings.Contains(doc, kw) {
				matched = append(matched, it)
				break
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Rating > matched[j].Rating
	})
	if len(matched) > topN {
		matched = matched[:topN]
	}

	span.SetAttributes(
		attribute.Int("keywords", len(keywords)),
		attribute.Int("matched", len(matched)),
	)
	return matched
}
