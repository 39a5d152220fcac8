package content

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/vocfr-backend/internal/adapter/postgres"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// LoadGraph reads the stored vocabulary back into a linked graph: units in
// corpus order, sections and links in file order, words in first-appearance
// order, audio segments attached to their words.
func (r *Repo) LoadGraph(ctx context.Context) (*domain.Graph, error) {
	b := domain.NewGraphBuilder()

	steps := []struct {
		entity string
		load   func(context.Context, *domain.GraphBuilder) error
	}{
		{"unit", r.loadUnits},
		{"section", r.loadSections},
		{"word", r.loadWords},
		{"word_form", r.loadForms},
		{"section_word", r.loadLinks},
		{"audio_segment", r.loadSegments},
	}
	for _, step := range steps {
		if err := step.load(ctx, b); err != nil {
			return nil, postgres.MapError(err, step.entity, "graph")
		}
	}

	return b.Build()
}

// eachRow runs sb and calls scan for every row.
func (r *Repo) eachRow(ctx context.Context, sb squirrel.SelectBuilder, scan func(pgx.Rows) error) error {
	query, args, err := sb.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *Repo) loadUnits(ctx context.Context, b *domain.GraphBuilder) error {
	sb := psql.Select("id", "number", "title", "is_unlocked", "required_stars", "required_gems", "position").
		From("units").
		OrderBy("position", "number")

	return r.eachRow(ctx, sb, func(rows pgx.Rows) error {
		u := &domain.Unit{}
		if err := rows.Scan(&u.ID, &u.Number, &u.Title, &u.IsUnlocked, &u.RequiredStars, &u.RequiredGems, &u.Position); err != nil {
			return err
		}
		b.AddUnit(u)
		return nil
	})
}

func (r *Repo) loadSections(ctx context.Context, b *domain.GraphBuilder) error {
	sb := psql.Select("s.id", "s.unit_id", "s.name", "s.order_index").
		From("sections s").
		Join("units u ON u.id = s.unit_id").
		OrderBy("u.position", "u.number", "s.position")

	return r.eachRow(ctx, sb, func(rows pgx.Rows) error {
		var unitID string
		s := &domain.Section{}
		if err := rows.Scan(&s.ID, &unitID, &s.Name, &s.OrderIndex); err != nil {
			return err
		}
		b.AddSection(unitID, s)
		return nil
	})
}

func (r *Repo) loadWords(ctx context.Context, b *domain.GraphBuilder) error {
	sb := psql.Select("id", "canonical", "translation", "image_name", "part_of_speech", "category").
		From("words")

	return r.eachRow(ctx, sb, func(rows pgx.Rows) error {
		var pos string
		w := &domain.Word{}
		if err := rows.Scan(&w.ID, &w.Canonical, &w.Translation, &w.ImageName, &pos, &w.Category); err != nil {
			return err
		}
		w.PartOfSpeech = domain.PartOfSpeech(pos)
		b.AddWord(w)
		return nil
	})
}

func (r *Repo) loadForms(ctx context.Context, b *domain.GraphBuilder) error {
	sb := psql.Select("id", "word_id", "position", "kind", "french", "article_only", "gender", "number", "is_main_form").
		From("word_forms").
		OrderBy("word_id", "position")

	return r.eachRow(ctx, sb, func(rows pgx.Rows) error {
		var (
			f              domain.WordForm
			kind           string
			gender, number *string
		)
		if err := rows.Scan(&f.ID, &f.WordID, &f.Position, &kind, &f.French, &f.ArticleOnly, &gender, &number, &f.IsMainForm); err != nil {
			return err
		}
		f.Kind = domain.FormKind(kind)
		f.Gender = enumPtr[domain.Gender](gender)
		f.Number = enumPtr[domain.GrammaticalNumber](number)
		b.AddForm(f)
		return nil
	})
}

func (r *Repo) loadLinks(ctx context.Context, b *domain.GraphBuilder) error {
	sb := psql.Select("sw.id", "sw.section_id", "sw.word_id", "sw.order_index").
		From("section_words sw").
		Join("sections s ON s.id = sw.section_id").
		Join("units u ON u.id = s.unit_id").
		OrderBy("u.position", "u.number", "s.position", "sw.order_index")

	return r.eachRow(ctx, sb, func(rows pgx.Rows) error {
		var (
			id                uuid.UUID
			sectionID, wordID string
			orderIndex        int
		)
		if err := rows.Scan(&id, &sectionID, &wordID, &orderIndex); err != nil {
			return err
		}
		b.AddLink(id, sectionID, wordID, orderIndex)
		return nil
	})
}

func (r *Repo) loadSegments(ctx context.Context, b *domain.GraphBuilder) error {
	sb := psql.Select(
		"f.id", "f.file_name", "f.file_path", "f.duration",
		"seg.id", "seg.word_id", "seg.start_time", "seg.end_time", "seg.form_kind", "seg.quality", "seg.confidence",
	).
		From("audio_segments seg").
		Join("audio_files f ON f.id = seg.audio_file_id").
		OrderBy("f.file_name", "seg.start_time")

	return r.eachRow(ctx, sb, func(rows pgx.Rows) error {
		var (
			f             domain.AudioFile
			seg           domain.AudioSegment
			kind, quality string
		)
		if err := rows.Scan(
			&f.ID, &f.FileName, &f.FilePath, &f.Duration,
			&seg.ID, &seg.WordID, &seg.StartTime, &seg.EndTime, &kind, &quality, &seg.Confidence,
		); err != nil {
			return err
		}
		seg.FormKind = domain.FormKind(kind)
		seg.Quality = domain.AudioQuality(quality)
		b.AddSegment(f, &seg)
		return nil
	})
}

func enumPtr[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}
