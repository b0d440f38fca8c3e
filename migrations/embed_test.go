// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(EmbedMigrations, "*.sql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(files) != 6 {
		t.Fatalf("expected 6 migrations, got %d", len(files))
	}

	for _, f := range files {
		content, err := fs.ReadFile(EmbedMigrations, f)
		if err != nil {
			t.Fatalf("failed to read %s: %v", f, err)
		}
		if !strings.Contains(string(content), "-- +goose Up") || !strings.Contains(string(content), "-- +goose Down") {
			t.Errorf("%s is missing goose annotations", f)
		}
	}
}
