// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package recommender hosts the conversational recommendation service: it
// owns the live sessions and exposes the turn loop over HTTP.
package recommender

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/compose"
	"github.com/sglab/samantha/services/recommender/config"
	"github.com/sglab/samantha/services/recommender/meta"
	"github.com/sglab/samantha/services/recommender/profile"
	"github.com/sglab/samantha/services/recommender/routing"
)

// Service owns the dialogue router, the profile store, and the live
// session table.
//
// Thread Safety: safe for concurrent use. Individual sessions are
// serialized by the session lock; different sessions proceed in parallel.
type Service struct {
	router *routing.Router
	store  profile.Store
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	state *routing.SessionState
}

// NewService wires a Service from its collaborators. A nil logger selects
// slog.Default().
func NewService(cat *catalog.Catalog, extractor meta.Extractor, composer compose.Composer, store profile.Store, rules *config.IntentConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		router:   routing.NewRouter(cat, extractor, composer, store, rules, logger),
		store:    store,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// ChatResult is one conversational turn's outcome plus its session id.
type ChatResult struct {
	SessionID     string
	Reply         string
	Branch        routing.Branch
	Titles        []string
	SelectedTitle string
	Terminated    bool
}

// Chat routes one utterance. An empty sessionID starts a new session for
// userName; a terminated session is removed from the table.
func (s *Service) Chat(ctx context.Context, sessionID, userName, message string) (*ChatResult, error) {
	sess, sessionID, err := s.resolveSession(ctx, sessionID, userName)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	turn := s.router.Route(ctx, sess.state, message)
	sess.mu.Unlock()

	if turn.Terminated {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
	}

	return &ChatResult{
		SessionID:     sessionID,
		Reply:         turn.Reply,
		Branch:        turn.Branch,
		Titles:        turn.Titles,
		SelectedTitle: turn.SelectedTitle,
		Terminated:    turn.Terminated,
	}, nil
}

// Greeting returns the opening line for a named user.
func (s *Service) Greeting(userName string) string {
	return routing.Greeting(userName)
}

// Store exposes the profile store for the history and dislike endpoints.
func (s *Service) Store() profile.Store {
	return s.store
}

func (s *Service) resolveSession(ctx context.Context, sessionID, userName string) (*session, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if sess, ok := s.sessions[sessionID]; ok {
			return sess, sessionID, nil
		}
	}

	if userName == "" {
		return nil, "", fmt.Errorf("recommender: user_name is required to start a session")
	}
	userID, err := s.store.GetOrCreateUser(ctx, userName)
	if err != nil {
		return nil, "", fmt.Errorf("recommender: resolving user %q: %w", userName, err)
	}

	sessionID = uuid.NewString()
	sess := &session{state: routing.NewSession(userID, userName)}
	s.sessions[sessionID] = sess
	s.logger.Info("session started",
		slog.String("session_id", sessionID),
		slog.String("user_id", userID),
	)
	return sess, sessionID, nil
}

// SessionCount reports how many sessions are live. Test and metrics hook.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
