// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
)

// MaxSnapshotSize bounds the catalog snapshot file. The deployed catalog is
// a few hundred items; anything beyond this is a corrupt or wrong file.
const MaxSnapshotSize = 64 << 20 // 64 MiB

// Load reads a catalog snapshot from a JSON file. The snapshot is an array
// of items in curation order; that order is preserved because it drives the
// scoring tie-break.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening snapshot: %w", err)
	}
	defer f.Close()
	return Read(io.LimitReader(f, MaxSnapshotSize+1))
}

// Read decodes a catalog snapshot from a reader.
func Read(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading snapshot: %w", err)
	}
	if len(data) > MaxSnapshotSize {
		return nil, fmt.Errorf("catalog: snapshot exceeds maximum size (%d bytes)", MaxSnapshotSize)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("catalog: parsing snapshot JSON: %w", err)
	}

	c := New(items)
	if dropped := len(items) - c.Len(); dropped > 0 {
		slog.Warn("catalog: dropped items with empty or duplicate titles",
			slog.Int("dropped", dropped),
			slog.Int("kept", c.Len()),
		)
	}
	slog.Info("catalog loaded", slog.Int("items", c.Len()))
	return c, nil
}
