package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Repo persists the vocabulary graph and catalogs. Calls made with a context
// from TxManager.RunInTx join that transaction.
type Repo struct {
	db *sql.DB
}

// NewRepo creates a new content repository.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) q(ctx context.Context) Querier {
	return QuerierFromCtx(ctx, r.db)
}

func (r *Repo) HasUnits(ctx context.Context) (bool, error)      { return r.exists(ctx, "units") }
func (r *Repo) HasAudioFiles(ctx context.Context) (bool, error) { return r.exists(ctx, "audio_files") }
func (r *Repo) HasGameModes(ctx context.Context) (bool, error)  { return r.exists(ctx, "game_modes") }
func (r *Repo) HasStorybooks(ctx context.Context) (bool, error) { return r.exists(ctx, "storybooks") }

func (r *Repo) exists(ctx context.Context, table string) (bool, error) {
	query, args, err := sq.Select("1").From(table).Limit(1).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var ok bool
	if err := r.q(ctx).QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, mapError(err, table, "exists")
	}
	return ok, nil
}

// ---------------------------------------------------------------------------
// Inserts (one multi-row INSERT per call)
// ---------------------------------------------------------------------------

func (r *Repo) InsertUnits(ctx context.Context, units []*domain.Unit) (int, error) {
	ib := sq.Insert("units").Columns("id", "number", "title", "is_unlocked", "required_stars", "required_gems", "position")
	for _, u := range units {
		ib = ib.Values(u.ID, u.Number, u.Title, u.IsUnlocked, u.RequiredStars, u.RequiredGems, u.Position)
	}
	return r.execInsert(ctx, "unit", len(units), ib)
}

func (r *Repo) InsertSections(ctx context.Context, sections []*domain.Section) (int, error) {
	ib := sq.Insert("sections").Columns("id", "unit_id", "name", "order_index", "position")
	for _, s := range sections {
		if s.Unit == nil {
			return 0, fmt.Errorf("section %s: %w", s.ID, domain.NewValidationError("unit", "required"))
		}
		ib = ib.Values(s.ID, s.Unit.ID, s.Name, s.OrderIndex, slices.Index(s.Unit.Sections, s))
	}
	return r.execInsert(ctx, "section", len(sections), ib)
}

func (r *Repo) InsertWords(ctx context.Context, words []*domain.Word) (int, error) {
	ib := sq.Insert("words").Columns("id", "canonical", "translation", "image_name", "part_of_speech", "category")
	for _, w := range words {
		ib = ib.Values(w.ID, w.Canonical, w.Translation, w.ImageName, string(w.PartOfSpeech), w.Category)
	}
	return r.execInsert(ctx, "word", len(words), ib)
}

func (r *Repo) InsertWordForms(ctx context.Context, forms []domain.WordForm) (int, error) {
	ib := sq.Insert("word_forms").
		Columns("id", "word_id", "position", "kind", "french", "article_only", "gender", "number", "is_main_form")
	for _, f := range forms {
		ib = ib.Values(f.ID, f.WordID, f.Position, string(f.Kind), f.French, f.ArticleOnly,
			stringPtr(f.Gender), stringPtr(f.Number), f.IsMainForm)
	}
	return r.execInsert(ctx, "word_form", len(forms), ib)
}

func (r *Repo) InsertSectionWords(ctx context.Context, links []*domain.SectionWord) (int, error) {
	ib := sq.Insert("section_words").Columns("id", "section_id", "word_id", "order_index")
	for _, sw := range links {
		ib = ib.Values(sw.ID, sw.Section.ID, sw.Word.ID, sw.OrderIndex)
	}
	return r.execInsert(ctx, "section_word", len(links), ib)
}

func (r *Repo) InsertAudioFiles(ctx context.Context, files []*domain.AudioFile) (int, error) {
	ib := sq.Insert("audio_files").Columns("id", "file_name", "file_path", "duration")
	for _, f := range files {
		ib = ib.Values(f.ID, f.FileName, f.FilePath, f.Duration)
	}
	return r.execInsert(ctx, "audio_file", len(files), ib)
}

func (r *Repo) InsertAudioSegments(ctx context.Context, segments []*domain.AudioSegment) (int, error) {
	ib := sq.Insert("audio_segments").
		Columns("id", "audio_file_id", "word_id", "start_time", "end_time", "form_kind", "quality", "confidence")
	for _, s := range segments {
		ib = ib.Values(s.ID, s.File.ID, s.WordID, s.StartTime, s.EndTime, string(s.FormKind), string(s.Quality), s.Confidence)
	}
	return r.execInsert(ctx, "audio_segment", len(segments), ib)
}

func (r *Repo) InsertGameModes(ctx context.Context, modes []domain.GameMode) (int, error) {
	ib := sq.Insert("game_modes").
		Columns("id", "name", "name_in_chinese", "description", "is_unlocked", "required_gems", "order_index", "icon_name")
	for _, m := range modes {
		ib = ib.Values(m.ID, m.Name, m.NameInChinese, m.Description, m.IsUnlocked, m.RequiredGems, m.OrderIndex, m.IconName)
	}
	return r.execInsert(ctx, "game_mode", len(modes), ib)
}

// InsertStorybooks inserts storybooks together with their pages.
// The count returned is the number of books.
func (r *Repo) InsertStorybooks(ctx context.Context, books []domain.Storybook) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	ib := sq.Insert("storybooks").
		Columns("id", "title", "title_in_chinese", "unit_id", "is_unlocked", "is_default", "required_gems", "order_index", "cover_image_name")
	pb := sq.Insert("story_pages").
		Columns("storybook_id", "page_number", "content_french", "content_chinese", "image_name", "audio_file_name")
	pages := 0
	for _, b := range books {
		ib = ib.Values(b.ID, b.Title, b.TitleInChinese, b.UnitID, b.IsUnlocked, b.IsDefault, b.RequiredGems, b.OrderIndex, b.CoverImageName)
		for _, p := range b.Pages {
			pb = pb.Values(b.ID, p.PageNumber, p.ContentFrench, p.ContentChinese, p.ImageName, p.AudioFileName)
			pages++
		}
	}

	n, err := r.execInsert(ctx, "storybook", len(books), ib)
	if err != nil {
		return 0, err
	}
	if _, err := r.execInsert(ctx, "story_page", pages, pb); err != nil {
		return 0, err
	}
	return n, nil
}

// execInsert runs ib unless it carries no rows and returns the rows affected.
func (r *Repo) execInsert(ctx context.Context, entity string, rows int, ib squirrel.InsertBuilder) (int, error) {
	if rows == 0 {
		return 0, nil
	}

	query, args, err := ib.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s insert: %w", entity, err)
	}

	res, err := r.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, entity, fmt.Sprintf("batch of %d", rows))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", entity, err)
	}
	return int(n), nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// WordIDs returns the set of stored word ids.
func (r *Repo) WordIDs(ctx context.Context) (map[string]bool, error) {
	set := make(map[string]bool)
	err := r.eachRow(ctx, sq.Select("id").From("words"), func(rows *sql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		set[id] = true
		return nil
	})
	if err != nil {
		return nil, mapError(err, "word", "ids")
	}
	return set, nil
}

// DeleteAll removes every imported row; foreign-key cascades remove the
// owned rows.
func (r *Repo) DeleteAll(ctx context.Context) error {
	for _, table := range []string{"storybooks", "game_modes", "audio_files", "units", "words"} {
		query, args, err := sq.Delete(table).ToSql()
		if err != nil {
			return fmt.Errorf("build delete %s: %w", table, err)
		}
		if _, err := r.q(ctx).ExecContext(ctx, query, args...); err != nil {
			return mapError(err, table, "all")
		}
	}
	return nil
}

func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
