// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package profile persists per-user recommendation history and dislike
// state. Only these aggregates survive across sessions; conversational
// session state itself is never persisted.
package profile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownInteraction is returned when recommendations or feedback
// reference an interaction id the store has never seen.
var ErrUnknownInteraction = errors.New("profile: unknown interaction id")

// Dislike is one disliked (category, value) pair. The "title" category
// excludes a specific movie; any other category excludes every item whose
// category field contains Value as literal text.
type Dislike struct {
	Category string
	Value    string
}

// Interaction is one recorded user utterance.
type Interaction struct {
	ID        string
	UserID    string
	Text      string
	CreatedAt time.Time
}

// Feedback records a user's reaction to one recommended title.
type Feedback struct {
	InteractionID string
	Title         string
	Selected      bool
	Disliked      bool
	CreatedAt     time.Time
}

// Store is the persistence collaborator contract. All methods are side
// effects of a conversational turn: callers log failures and continue, they
// never block response delivery on a store error.
//
// Thread Safety: implementations must tolerate concurrent access from
// multiple sessions referencing the same user id. Last-writer-wins is
// acceptable; there is no cross-device transaction requirement.
type Store interface {
	// GetOrCreateUser resolves a display name to a stable user id,
	// creating the user on first contact.
	GetOrCreateUser(ctx context.Context, name string) (string, error)

	// RecordInteraction stores one user utterance and returns its id.
	RecordInteraction(ctx context.Context, userID, text string) (string, error)

	// LogRecommendations appends the recommended titles for an interaction.
	// Titles accumulate into the user's previous-titles set, which
	// monotonically grows and never shrinks.
	LogRecommendations(ctx context.Context, interactionID string, titles []string) error

	// RecordFeedback stores a selected/disliked signal for one title.
	RecordFeedback(ctx context.Context, interactionID, title string, selected, disliked bool) error

	// AddDislike registers a disliked (category, value) pair for a user.
	AddDislike(ctx context.Context, userID string, d Dislike) error

	// PreviousTitles returns every title ever recommended to the user.
	PreviousTitles(ctx context.Context, userID string) ([]string, error)

	// Dislikes returns the user's disliked (category, value) pairs.
	Dislikes(ctx context.Context, userID string) ([]Dislike, error)

	// Close releases store resources.
	Close() error
}

// =============================================================================
// In-Memory Store
// =============================================================================

// MemoryStore is a Store backed by process memory. Used by tests and by the
// CLI when no data directory is configured.
//
// Thread Safety: safe for concurrent use.
type MemoryStore struct {
	mu           sync.Mutex
	usersByName  map[string]string
	interactions map[string]Interaction
	titles       map[string][]string
	titleSeen    map[string]map[string]struct{}
	dislikes     map[string][]Dislike
	feedback     []Feedback
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usersByName:  make(map[string]string),
		interactions: make(map[string]Interaction),
		titles:       make(map[string][]string),
		titleSeen:    make(map[string]map[string]struct{}),
		dislikes:     make(map[string][]Dislike),
	}
}

// GetOrCreateUser implements Store.
func (s *MemoryStore) GetOrCreateUser(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.usersByName[name]; ok {
		return id, nil
	}
	id := uuid.NewString()
	s.usersByName[name] = id
	return id, nil
}

// RecordInteraction implements Store.
func (s *MemoryStore) RecordInteraction(_ context.Context, userID, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.interactions[id] = Interaction{ID: id, UserID: userID, Text: text, CreatedAt: time.Now()}
	return id, nil
}

// LogRecommendations implements Store.
func (s *MemoryStore) LogRecommendations(_ context.Context, interactionID string, titles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.interactions[interactionID]
	if !ok {
		return ErrUnknownInteraction
	}
	seen := s.titleSeen[in.UserID]
	if seen == nil {
		seen = make(map[string]struct{})
		s.titleSeen[in.UserID] = seen
	}
	for _, t := range titles {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		s.titles[in.UserID] = append(s.titles[in.UserID], t)
	}
	return nil
}

// RecordFeedback implements Store.
func (s *MemoryStore) RecordFeedback(_ context.Context, interactionID, title string, selected, disliked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, Feedback{
		InteractionID: interactionID,
		Title:         title,
		Selected:      selected,
		Disliked:      disliked,
		CreatedAt:     time.Now(),
	})
	return nil
}

// AddDislike implements Store.
func (s *MemoryStore) AddDislike(_ context.Context, userID string, d Dislike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dislikes[userID] = append(s.dislikes[userID], d)
	return nil
}

// PreviousTitles implements Store.
func (s *MemoryStore) PreviousTitles(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.titles[userID]))
	copy(out, s.titles[userID])
	return out, nil
}

// Dislikes implements Store.
func (s *MemoryStore) Dislikes(_ context.Context, userID string) ([]Dislike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Dislike, len(s.dislikes[userID]))
	copy(out, s.dislikes[userID])
	return out, nil
}

// FeedbackLog returns recorded feedback in arrival order. Test hook.
func (s *MemoryStore) FeedbackLog() []Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Feedback, len(s.feedback))
	copy(out, s.feedback)
	return out
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
