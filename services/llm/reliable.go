// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultCallTimeout bounds one collaborator call. The upstream services
// impose no timeout of their own, so every call made by the core goes
// through this wrapper.
const DefaultCallTimeout = 30 * time.Second

// Reliable decorates a Client with a per-call timeout and a single retry on
// transient failure. Failures after the retry surface to the caller, which
// is expected to degrade (empty keyword meta, templated listing) rather
// than abort the conversational turn.
//
// Thread Safety: Reliable is safe for concurrent use if the wrapped Client is.
type Reliable struct {
	inner   Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewReliable wraps a client. A zero timeout selects DefaultCallTimeout;
// a nil logger selects slog.Default().
func NewReliable(inner Client, timeout time.Duration, logger *slog.Logger) *Reliable {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reliable{inner: inner, timeout: timeout, logger: logger}
}

// Complete implements Client with timeout + single-retry semantics.
func (r *Reliable) Complete(ctx context.Context, system, user string) (string, error) {
	out, err := r.attempt(ctx, system, user)
	if err == nil {
		return out, nil
	}
	// Caller cancellation is not transient; do not burn a retry on it.
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return "", err
	}

	r.logger.Warn("LLM call failed, retrying once", slog.String("error", RedactSecrets(err.Error())))
	out, err = r.attempt(ctx, system, user)
	if err != nil {
		r.logger.Warn("LLM retry failed", slog.String("error", RedactSecrets(err.Error())))
		return "", err
	}
	return out, nil
}

func (r *Reliable) attempt(ctx context.Context, system, user string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.Complete(callCtx, system, user)
}
