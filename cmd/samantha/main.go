// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command samantha runs the conversational movie recommender, either as an
// interactive terminal chat or as an HTTP service.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sglab/samantha/services/llm"
	"github.com/sglab/samantha/services/recommender"
	"github.com/sglab/samantha/services/recommender/catalog"
	"github.com/sglab/samantha/services/recommender/compose"
	"github.com/sglab/samantha/services/recommender/config"
	"github.com/sglab/samantha/services/recommender/meta"
	"github.com/sglab/samantha/services/recommender/profile"
)

// Persistent flag values shared by the subcommands.
var (
	catalogPath string
	dataDir     string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "samantha",
	Short: "Samantha is a conversational movie recommendation agent",
	Long: `Samantha recommends movies through conversation: it extracts mood and
preference keywords from what you say, scores the catalog against them,
and remembers what it already recommended so you never see the same
title twice.`,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return configureLogging(logLevel)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "movies.json", "path to the catalog snapshot (JSON array)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "profile store directory (empty keeps profiles in memory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configureLogging(level string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// buildService assembles the full service from the persistent flags. The
// returned cleanup closes the profile store.
func buildService(ctx context.Context) (*recommender.Service, func(), error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	slog.Info("catalog loaded", slog.String("path", catalogPath), slog.Int("items", cat.Len()))

	rules, err := config.GetIntentConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading intent rules: %w", err)
	}

	client, err := llm.NewOpenAIClient()
	if err != nil {
		return nil, nil, fmt.Errorf("creating language model client: %w", err)
	}
	reliable := llm.NewReliable(client, llm.DefaultCallTimeout, nil)

	var store profile.Store
	if dataDir != "" {
		store, err = profile.OpenBadger(dataDir, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("opening profile store: %w", err)
		}
	} else {
		store = profile.NewMemoryStore()
	}

	service := recommender.NewService(
		cat,
		meta.NewLLMExtractor(reliable, nil),
		compose.NewLLMComposer(reliable, nil),
		store,
		rules,
		nil,
	)
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.Printf("closing profile store: %v", err)
		}
	}
	return service, cleanup, nil
}
