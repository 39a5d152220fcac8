package testhelper

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// SeedUnit inserts one unit with one section linking a single noun, bypassing
// the repository. Returns the word id.
func SeedUnit(t *testing.T, pool *pgxpool.Pool, unitNumber int, canonical string) string {
	t.Helper()
	ctx := context.Background()

	unitID := fmt.Sprintf("unite%d", unitNumber)
	sectionID := fmt.Sprintf("u%ds1", unitNumber)

	stmts := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO units (id, number, title, is_unlocked, required_stars, required_gems, position)
		  VALUES ($1, $2, $3, true, 0, 0, $2)`, []any{unitID, unitNumber, "Unit " + unitID}},
		{`INSERT INTO sections (id, unit_id, name, order_index, position)
		  VALUES ($1, $2, 'Section', 1, 0)`, []any{sectionID, unitID}},
		{`INSERT INTO words (id, canonical, translation, image_name, part_of_speech, category)
		  VALUES ($1, $1, '', $2, 'NOUN', '')
		  ON CONFLICT (id) DO NOTHING`, []any{canonical, domain.ImageAssetName(canonical)}},
		{`INSERT INTO section_words (id, section_id, word_id, order_index)
		  VALUES ($1, $2, $3, 0)`, []any{domain.SectionWordID(sectionID, 0), sectionID, canonical}},
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s.sql, s.args...); err != nil {
			t.Fatalf("testhelper: SeedUnit: %v", err)
		}
	}

	return canonical
}
