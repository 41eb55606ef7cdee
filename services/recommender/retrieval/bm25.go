// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package retrieval provides the lexical retrieval index backing the two
// question-answering branches: a global index over the entire catalog's
// documents, and an ephemeral per-call index over the documents of the
// last recommendation set.
package retrieval

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// BM25 tuning constants. Standard values recommended by Robertson et al.
const (
	// bm25K1 controls term frequency saturation. Higher = slower saturation.
	bm25K1 = 1.5

	// bm25B controls document length normalization. 0.75 is the standard
	// default.
	bm25B = 0.75
)

// DefaultTruncateLimit bounds the text ingested per document in the
// ephemeral follow-up index, so retrieved passages respect downstream
// prompt token limits.
const DefaultTruncateLimit = 1200

// Document is one indexable passage with its owning title.
type Document struct {
	Title string
	Text  string
}

// Hit is one retrieval result.
type Hit struct {
	Document Document
	Score    float64
}

type indexedDoc struct {
	doc Document
	tf  map[string]int
	len int
}

// Index is a pre-built Okapi BM25 inverted index over documents.
//
// # Description
//
// At query time, BM25 produces a score per document proportional to how
// well it matches the query terms, weighted by term rarity across the
// corpus (IDF, Lucene-style add-one smoothing). For a catalog of at most a
// few hundred short documents this in-process index answers in
// microseconds with no external service dependency.
//
// # Thread Safety
//
// Index is immutable after construction via Build. Safe for concurrent use
// without additional synchronization.
type Index struct {
	docs   []indexedDoc
	idf    map[string]float64
	avgLen float64
}

// Build constructs an Index from documents. An empty slice returns a valid
// index producing zero hits for every query.
func Build(docs []Document) *Index {
	if len(docs) == 0 {
		return &Index{idf: make(map[string]float64)}
	}

	indexed := make([]indexedDoc, 0, len(docs))
	totalLen := 0
	df := make(map[string]int)

	for _, d := range docs {
		tf := termFrequencies(d.Text + " " + d.Title)
		length := 0
		for _, n := range tf {
			length += n
		}
		indexed = append(indexed, indexedDoc{doc: d, tf: tf, len: length})
		totalLen += length
		for term := range tf {
			df[term]++
		}
	}

	n := len(indexed)
	idf := make(map[string]float64, len(df))
	for term, docFreq := range df {
		idf[term] = math.Log(float64(n+1)/float64(docFreq+1)) + 1.0
	}

	return &Index{
		docs:   indexed,
		idf:    idf,
		avgLen: float64(totalLen) / float64(n),
	}
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// TopK returns the k best-scoring documents for the query, best first.
// Documents with zero score are omitted; ties keep corpus order.
func (idx *Index) TopK(query string, k int) []Hit {
	if query == "" || len(idx.docs) == 0 || k <= 0 {
		return nil
	}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	hits := make([]Hit, 0, len(idx.docs))
	for _, d := range idx.docs {
		if score := idx.score(terms, d); score > 0 {
			hits = append(hits, Hit{Document: d.doc, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func (idx *Index) score(terms []string, d indexedDoc) float64 {
	dl := float64(d.len)
	var score float64
	for _, term := range terms {
		tf, inDoc := d.tf[term]
		if !inDoc {
			continue
		}
		termIDF, known := idx.idf[term]
		if !known {
			continue
		}
		tfFloat := float64(tf)
		numerator := tfFloat * (bm25K1 + 1)
		denominator := tfFloat + bm25K1*(1.0-bm25B+bm25B*dl/idx.avgLen)
		score += termIDF * (numerator / denominator)
	}
	return score
}

// =============================================================================
// Tokenization
// =============================================================================

// Tokenize splits text into lowercase terms on any rune that is neither a
// letter nor a digit. Whitespace segmentation is the right granularity for
// the mixed Korean/Latin catalog text; no stemming is attempted.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, strings.ToLower(f))
	}
	return terms
}

func termFrequencies(text string) map[string]int {
	tf := make(map[string]int)
	for _, term := range Tokenize(text) {
		tf[term]++
	}
	return tf
}

// Truncate caps a document's text at limit runes, appending an ellipsis
// marker when cut. Applied per item when building the ephemeral follow-up
// index.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultTruncateLimit
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
