// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package profile

// User profile aggregates live in embedded BadgerDB rather than a relational
// store. The access pattern is a handful of point lookups per conversational
// turn over small per-user records; an embedded KV store gives that without
// a network dependency, and Badger transactions provide the only locking the
// concurrency model requires (last-writer-wins across devices is acceptable).
//
// Storage layout:
//
//	profile/v1/user/{name}            → user id
//	profile/v1/titles/{userID}        → gob []string (previously recommended, append-only)
//	profile/v1/dislikes/{userID}      → gob []Dislike
//	profile/v1/interaction/{id}       → gob Interaction
//	profile/v1/feedback/{id}/{title}  → gob Feedback

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	keyUserPrefix        = "profile/v1/user/"
	keyTitlesPrefix      = "profile/v1/titles/"
	keyDislikesPrefix    = "profile/v1/dislikes/"
	keyInteractionPrefix = "profile/v1/interaction/"
	keyFeedbackPrefix    = "profile/v1/feedback/"
)

// BadgerStore is a Store backed by an embedded BadgerDB instance.
//
// Thread Safety: safe for concurrent use; Badger transactions serialize
// conflicting writers.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a profile store at dir.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Badger's own logger is too chatty for a library store
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("profile: opening badger at %s: %w", dir, err)
	}
	logger.Info("profile store opened", slog.String("dir", dir))
	return &BadgerStore{db: db, logger: logger}, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// GetOrCreateUser implements Store.
func (s *BadgerStore) GetOrCreateUser(_ context.Context, name string) (string, error) {
	key := []byte(keyUserPrefix + name)
	var id string
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			id = string(val)
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		id = uuid.NewString()
		return txn.Set(key, []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("profile: get or create user %q: %w", name, err)
	}
	return id, nil
}

// RecordInteraction implements Store.
func (s *BadgerStore) RecordInteraction(_ context.Context, userID, text string) (string, error) {
	in := Interaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	blob, err := encode(in)
	if err != nil {
		return "", fmt.Errorf("profile: encoding interaction: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyInteractionPrefix+in.ID), blob)
	})
	if err != nil {
		return "", fmt.Errorf("profile: storing interaction: %w", err)
	}
	return in.ID, nil
}

// LogRecommendations implements Store.
func (s *BadgerStore) LogRecommendations(_ context.Context, interactionID string, titles []string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		var in Interaction
		if err := getDecoded(txn, keyInteractionPrefix+interactionID, &in); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUnknownInteraction
			}
			return err
		}

		key := keyTitlesPrefix + in.UserID
		var existing []string
		if err := getDecoded(txn, key, &existing); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		seen := make(map[string]struct{}, len(existing))
		for _, t := range existing {
			seen[t] = struct{}{}
		}
		for _, t := range titles {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			existing = append(existing, t)
		}

		blob, err := encode(existing)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), blob)
	})
	if err != nil {
		return fmt.Errorf("profile: logging recommendations: %w", err)
	}
	return nil
}

// RecordFeedback implements Store.
func (s *BadgerStore) RecordFeedback(_ context.Context, interactionID, title string, selected, disliked bool) error {
	fb := Feedback{
		InteractionID: interactionID,
		Title:         title,
		Selected:      selected,
		Disliked:      disliked,
		CreatedAt:     time.Now().UTC(),
	}
	blob, err := encode(fb)
	if err != nil {
		return fmt.Errorf("profile: encoding feedback: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFeedbackPrefix+interactionID+"/"+title), blob)
	})
	if err != nil {
		return fmt.Errorf("profile: storing feedback: %w", err)
	}
	return nil
}

// AddDislike implements Store.
func (s *BadgerStore) AddDislike(_ context.Context, userID string, d Dislike) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key := keyDislikesPrefix + userID
		var existing []Dislike
		if err := getDecoded(txn, key, &existing); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		existing = append(existing, d)
		blob, err := encode(existing)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), blob)
	})
	if err != nil {
		return fmt.Errorf("profile: adding dislike: %w", err)
	}
	return nil
}

// PreviousTitles implements Store.
func (s *BadgerStore) PreviousTitles(_ context.Context, userID string) ([]string, error) {
	var titles []string
	err := s.db.View(func(txn *badger.Txn) error {
		err := getDecoded(txn, keyTitlesPrefix+userID, &titles)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("profile: loading previous titles: %w", err)
	}
	return titles, nil
}

// Dislikes implements Store.
func (s *BadgerStore) Dislikes(_ context.Context, userID string) ([]Dislike, error) {
	var dislikes []Dislike
	err := s.db.View(func(txn *badger.Txn) error {
		err := getDecoded(txn, keyDislikesPrefix+userID, &dislikes)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("profile: loading dislikes: %w", err)
	}
	return dislikes, nil
}

// =============================================================================
// Helpers
// =============================================================================

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getDecoded(txn *badger.Txn, key string, dst any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(val)).Decode(dst)
}
