// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/meta"
)

// Production-info recommendation: queries like "류승룡이 출연하는 영화
// 추천해줘" name an actor, director, or producer rather than a mood. The
// query keyword is matched against the production columns first, then the
// surviving items are ranked by meta score. If no item passes the meta
// score, the production match alone stands and rating orders the result.

// infoKeywordPattern pulls the search keyword out of a production-info
// query: the text before 출연/감독/제작/나오는/줄거리/내용.
var infoKeywordPattern = regexp.MustCompile(`(.*?)(이|가)?\s*(출연|감독|제작|나오는|줄거리|내용)`)

// ExtractInfoKeyword returns the production keyword named by the query, or
// "" if the query is not a production-info request.
func ExtractInfoKeyword(query string) string {
	m := infoKeywordPattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// FilterByInfo keeps items whose production fields (actor, director,
// description, producer) contain the keyword as literal text.
func FilterByInfo(keyword string, items []catalog.Item) []catalog.Item {
	if keyword == "" {
		return nil
	}
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(it.Actor, keyword) ||
			strings.Contains(it.Director, keyword) ||
			strings.Contains(it.Description, keyword) ||
			strings.Contains(it.Producer, keyword) {
			out = append(out, it)
		}
	}
	return out
}

// RecommendByInfo runs the production-info recommendation flow: keyword
// filter, then meta ranking within the survivors. When the meta ranking
// admits nothing, the production-filtered set is returned in rating order
// instead — the production match is a strong enough signal on its own.
func RecommendByInfo(ctx context.Context, query string, items []catalog.Item, m meta.UserMeta) []catalog.Item {
	keyword := ExtractInfoKeyword(query)
	filtered := FilterByInfo(keyword, items)
	if len(filtered) == 0 {
		return nil
	}

	ranked := Rank(ctx, filtered, m, DefaultCap)
	if len(ranked) > 0 {
		return ranked
	}

	byRating := make([]catalog.Item, len(filtered))
	copy(byRating, filtered)
	sort.SliceStable(byRating, func(i, j int) bool {
		return byRating[i].Rating > byRating[j].Rating
	})
	if len(byRating) > DefaultCap {
		byRating = byRating[:DefaultCap]
	}
	return byRating
}
