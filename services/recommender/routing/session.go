// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package routing drives the conversational turn loop: each user utterance
// is classified into exactly one dialogue branch, in a fixed priority
// order, and the branch's handler produces the reply and the next session
// state.
package routing

import "github.com/sglab/samantha/services/recommender/catalog"

// Branch identifies which dialogue branch handled a turn.
type Branch string

const (
	BranchExit      Branch = "exit"
	BranchComplete  Branch = "complete"
	BranchFollowUp  Branch = "follow_up"
	BranchSimilar   Branch = "similar"
	BranchRetry     Branch = "retry"
	BranchRecommend Branch = "recommend"
	BranchQA        Branch = "qa"
)

// SessionState is the per-conversation mutable state. It lives only for
// the duration of one conversation; cross-session facts (previous titles,
// dislikes) belong to the profile store.
//
// Thread Safety: a SessionState belongs to exactly one conversation and
// must not be shared across goroutines without external synchronization.
type SessionState struct {
	// UserID is the profile store id resolved for this conversation.
	UserID string

	// UserName is the display name used in replies.
	UserName string

	// FirstTurn is true until the first successful recommendation; the
	// result-set branches (follow-up, similar, retry) stay unreachable
	// while it holds.
	FirstTurn bool

	// LastRecommendation is the most recent recommendation batch, in
	// presentation order. Replaced wholesale on each new recommendation.
	LastRecommendation []catalog.Item

	// LastQuery is the query that produced LastRecommendation. The retry
	// branch re-extracts keywords from it.
	LastQuery string

	// SelectedTitle is the title the user picked on a completion turn.
	SelectedTitle string
}

// NewSession creates the state for a fresh conversation.
func NewSession(userID, userName string) *SessionState {
	return &SessionState{
		UserID:    userID,
		UserName:  userName,
		FirstTurn: true,
	}
}

// Reset clears everything conversational, keeping the user identity. Used
// when a session ends and the same user starts over.
func (s *SessionState) Reset() {
	s.FirstTurn = true
	s.LastRecommendation = nil
	s.LastQuery = ""
	s.SelectedTitle = ""
}

// LastTitles returns the titles of the last recommendation batch in
// presentation order.
func (s *SessionState) LastTitles() []string {
	if len(s.LastRecommendation) == 0 {
		return nil
	}
	titles := make([]string, len(s.LastRecommendation))
	for i, it := range s.LastRecommendation {
		titles[i] = it.Title
	}
	return titles
}
