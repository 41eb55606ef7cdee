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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/meta"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	scoringLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "samantha",
		Subsystem: "scoring",
		Name:      "latency_seconds",
		Help:      "Catalog scoring pass latency",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	scoringResultCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "samantha",
		Subsystem: "scoring",
		Name:      "result_count",
		Help:      "Number of admitted items per scoring pass",
		Buckets:   []float64{0, 1, 2, 3, 4, 5},
	})

	fallbackDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "samantha",
		Subsystem: "scoring",
		Name:      "dispatch_total",
		Help:      "Recommendation dispatches by strategy",
	}, []string{"strategy"})
)

var scoringTracer = otel.Tracer("samantha.recommender.scoring")

// =============================================================================
// Scoring Engine
// =============================================================================

const (
	// DefaultCap bounds a ranked recommendation set.
	DefaultCap = 5

	// DefaultFallbackTop bounds the fallback selector's result. Smaller
	// than DefaultCap: the containment match has weaker precision.
	DefaultFallbackTop = 3

	// KeywordThreshold is the minimum total extracted keyword count for
	// category-overlap scoring to be trusted. Below it, sparse extraction
	// makes overlap scores unreliable and the fallback selector runs
	// instead.
	KeywordThreshold = 5
)

// Score computes the relevance of one item against extracted user meta:
// for each category present in the meta, the cardinality of the
// intersection between the item's comma-split tokens and the user's
// keywords. Categories absent from the meta contribute zero.
func Score(it *catalog.Item, m meta.UserMeta) int {
	score := 0
	for category, keywords := range m {
		tokens := it.Tokens(string(category))
		if len(tokens) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			set[t] = struct{}{}
		}
		for _, kw := range keywords {
			if _, hit := set[kw]; hit {
				score++
			}
		}
	}
	return score
}

// Rank scores every item against the meta and returns the top items.
// Admission requires score > 0 — a zero score excludes the item entirely,
// it is not merely sorted last. Ties keep original catalog order (stable
// sort); that ordering is the engine's only determinism guarantee. The
// result is truncated to cap (DefaultCap when cap <= 0).
//
// The input is never mutated; scores live in a parallel collection.
func Rank(ctx context.Context, items []catalog.Item, m meta.UserMeta, cap int) []catalog.Item {
	start := time.Now()
	_, span := scoringTracer.Start(ctx, "scoring.Rank")
	defer span.End()

	if cap <= 0 {
		cap = DefaultCap
	}

	type scored struct {
		item  catalog.Item
		score int
	}
	admitted := make([]scored, 0, len(items))
	for _, it := range items {
		if s := Score(&it, m); s > 0 {
			admitted = append(admitted, scored{item: it, score: s})
		}
	}

	sort.SliceStable(admitted, func(i, j int) bool {
		return admitted[i].score > admitted[j].score
	})

	if len(admitted) > cap {
		admitted = admitted[:cap]
	}
	out := make([]catalog.Item, len(admitted))
	for i, s := range admitted {
		out[i] = s.item
	}

	scoringLatency.Observe(time.Since(start).Seconds())
	scoringResultCount.Observe(float64(len(out)))
	span.SetAttributes(
		attribute.Int("candidates", len(items)),
		attribute.Int("admitted", len(out)),
		attribute.Int("keywords", m.TotalKeywords()),
	)
	return out
}

// Recommend dispatches between the scoring engine and the fallback
// selector: rich metas (TotalKeywords >= KeywordThreshold) go through
// category-overlap ranking, sparse ones through the cruder but more robust
// containment selector.
func Recommend(ctx context.Context, items []catalog.Item, m meta.UserMeta) []catalog.Item {
	if m.TotalKeywords() >= KeywordThreshold {
		fallbackDispatches.WithLabelValues("engine").Inc()
		return Rank(ctx, items, m, DefaultCap)
	}
	fallbackDispatches.WithLabelValues("fallback").Inc()
	return SelectFallback(ctx, m, items, DefaultFallbackTop)
}
