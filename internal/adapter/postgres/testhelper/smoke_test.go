//go:build integration

package testhelper

import (
	"context"
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	word := SeedUnit(t, pool, 1, "chat")

	var unit string
	err := pool.QueryRow(context.Background(),
		`SELECT s.unit_id FROM section_words sw JOIN sections s ON s.id = sw.section_id WHERE sw.word_id = $1`,
		word,
	).Scan(&unit)
	if err != nil {
		t.Fatalf("expected seeded link in DB, got error: %v", err)
	}

	if unit != "unite1" {
		t.Fatalf("expected unit %q, got %q", "unite1", unit)
	}
}
