// Package content persists the imported vocabulary graph and catalogs in PostgreSQL.
package content

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/vocfr-backend/internal/adapter/postgres"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides content persistence. Calls made with a context from
// postgres.TxManager.RunInTx join that transaction.
type Repo struct {
	db postgres.Querier
}

// New creates a new content repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

func (r *Repo) q(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, r.db)
}

// ---------------------------------------------------------------------------
// Guards
// ---------------------------------------------------------------------------

func (r *Repo) HasUnits(ctx context.Context) (bool, error)      { return r.exists(ctx, "units") }
func (r *Repo) HasAudioFiles(ctx context.Context) (bool, error) { return r.exists(ctx, "audio_files") }
func (r *Repo) HasGameModes(ctx context.Context) (bool, error)  { return r.exists(ctx, "game_modes") }
func (r *Repo) HasStorybooks(ctx context.Context) (bool, error) { return r.exists(ctx, "storybooks") }

func (r *Repo) exists(ctx context.Context, table string) (bool, error) {
	query, args, err := psql.Select("1").From(table).Limit(1).
		Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var ok bool
	if err := r.q(ctx).QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, postgres.MapError(err, table, "exists")
	}
	return ok, nil
}

// ---------------------------------------------------------------------------
// Batch inserts (pgx.Batch API)
// ---------------------------------------------------------------------------

// InsertUnits inserts units. Their sections are inserted separately.
func (r *Repo) InsertUnits(ctx context.Context, units []*domain.Unit) (int, error) {
	if len(units) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(units))
	for _, u := range units {
		batch.Queue(
			`INSERT INTO units (id, number, title, is_unlocked, required_stars, required_gems, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			u.ID, u.Number, u.Title, u.IsUnlocked, u.RequiredStars, u.RequiredGems, u.Position,
		)
		keys = append(keys, u.ID)
	}

	return r.sendBatchExec(ctx, "unit", batch, keys)
}

// InsertSections inserts sections. Each must carry its Unit back-reference;
// the position within the unit is stored so reads keep file order.
func (r *Repo) InsertSections(ctx context.Context, sections []*domain.Section) (int, error) {
	if len(sections) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.Unit == nil {
			return 0, fmt.Errorf("section %s: %w", s.ID, domain.NewValidationError("unit", "required"))
		}
		batch.Queue(
			`INSERT INTO sections (id, unit_id, name, order_index, position)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.ID, s.Unit.ID, s.Name, s.OrderIndex, slices.Index(s.Unit.Sections, s),
		)
		keys = append(keys, s.ID)
	}

	return r.sendBatchExec(ctx, "section", batch, keys)
}

// InsertWords inserts words. Forms and links are inserted separately.
func (r *Repo) InsertWords(ctx context.Context, words []*domain.Word) (int, error) {
	if len(words) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(words))
	for _, w := range words {
		batch.Queue(
			`INSERT INTO words (id, canonical, translation, image_name, part_of_speech, category)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			w.ID, w.Canonical, w.Translation, w.ImageName, string(w.PartOfSpeech), w.Category,
		)
		keys = append(keys, w.ID)
	}

	return r.sendBatchExec(ctx, "word", batch, keys)
}

func (r *Repo) InsertWordForms(ctx context.Context, forms []domain.WordForm) (int, error) {
	if len(forms) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(forms))
	for _, f := range forms {
		batch.Queue(
			`INSERT INTO word_forms (id, word_id, position, kind, french, article_only, gender, number, is_main_form)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			f.ID, f.WordID, f.Position, string(f.Kind), f.French, f.ArticleOnly,
			stringPtr(f.Gender), stringPtr(f.Number), f.IsMainForm,
		)
		keys = append(keys, f.WordID+"#"+strconv.Itoa(f.Position))
	}

	return r.sendBatchExec(ctx, "word_form", batch, keys)
}

func (r *Repo) InsertSectionWords(ctx context.Context, links []*domain.SectionWord) (int, error) {
	if len(links) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(links))
	for _, sw := range links {
		batch.Queue(
			`INSERT INTO section_words (id, section_id, word_id, order_index)
			 VALUES ($1, $2, $3, $4)`,
			sw.ID, sw.Section.ID, sw.Word.ID, sw.OrderIndex,
		)
		keys = append(keys, sw.Section.ID+"/"+strconv.Itoa(sw.OrderIndex))
	}

	return r.sendBatchExec(ctx, "section_word", batch, keys)
}

func (r *Repo) InsertAudioFiles(ctx context.Context, files []*domain.AudioFile) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(files))
	for _, f := range files {
		batch.Queue(
			`INSERT INTO audio_files (id, file_name, file_path, duration)
			 VALUES ($1, $2, $3, $4)`,
			f.ID, f.FileName, f.FilePath, f.Duration,
		)
		keys = append(keys, f.FileName)
	}

	return r.sendBatchExec(ctx, "audio_file", batch, keys)
}

func (r *Repo) InsertAudioSegments(ctx context.Context, segments []*domain.AudioSegment) (int, error) {
	if len(segments) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(segments))
	for _, s := range segments {
		batch.Queue(
			`INSERT INTO audio_segments (id, audio_file_id, word_id, start_time, end_time, form_kind, quality, confidence)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.File.ID, s.WordID, s.StartTime, s.EndTime, string(s.FormKind), string(s.Quality), s.Confidence,
		)
		keys = append(keys, s.ID.String())
	}

	return r.sendBatchExec(ctx, "audio_segment", batch, keys)
}

func (r *Repo) InsertGameModes(ctx context.Context, modes []domain.GameMode) (int, error) {
	if len(modes) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	keys := make([]string, 0, len(modes))
	for _, m := range modes {
		batch.Queue(
			`INSERT INTO game_modes (id, name, name_in_chinese, description, is_unlocked, required_gems, order_index, icon_name)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, m.Name, m.NameInChinese, m.Description, m.IsUnlocked, m.RequiredGems, m.OrderIndex, m.IconName,
		)
		keys = append(keys, m.ID)
	}

	return r.sendBatchExec(ctx, "game_mode", batch, keys)
}

// InsertStorybooks inserts storybooks together with their pages.
// The count returned is the number of books.
func (r *Repo) InsertStorybooks(ctx context.Context, books []domain.Storybook) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	var keys []string
	for _, b := range books {
		batch.Queue(
			`INSERT INTO storybooks (id, title, title_in_chinese, unit_id, is_unlocked, is_default, required_gems, order_index, cover_image_name)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			b.ID, b.Title, b.TitleInChinese, b.UnitID, b.IsUnlocked, b.IsDefault, b.RequiredGems, b.OrderIndex, b.CoverImageName,
		)
		keys = append(keys, b.ID)
		for _, p := range b.Pages {
			batch.Queue(
				`INSERT INTO story_pages (storybook_id, page_number, content_french, content_chinese, image_name, audio_file_name)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				b.ID, p.PageNumber, p.ContentFrench, p.ContentChinese, p.ImageName, p.AudioFileName,
			)
			keys = append(keys, b.ID+"#"+strconv.Itoa(p.PageNumber))
		}
	}

	if _, err := r.sendBatchExec(ctx, "storybook", batch, keys); err != nil {
		return 0, err
	}
	return len(books), nil
}

// sendBatchExec sends a batch and sums affected rows. keys name the row of
// each queued statement in error messages.
func (r *Repo) sendBatchExec(ctx context.Context, entity string, batch *pgx.Batch, keys []string) (int, error) {
	results := r.q(ctx).SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for i := range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, postgres.MapError(err, entity, keys[i])
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// WordIDs returns the set of stored word ids.
func (r *Repo) WordIDs(ctx context.Context) (map[string]bool, error) {
	query, args, err := psql.Select("id").From("words").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build word ids query: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "word", "ids")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.MapError(err, "word", "ids")
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// DeleteAll removes every imported row. Owning rows are deleted and the
// schema's cascades remove what they own.
func (r *Repo) DeleteAll(ctx context.Context) error {
	for _, table := range []string{"storybooks", "game_modes", "audio_files", "units", "words"} {
		query, args, err := psql.Delete(table).ToSql()
		if err != nil {
			return fmt.Errorf("build delete %s: %w", table, err)
		}
		if _, err := r.q(ctx).Exec(ctx, query, args...); err != nil {
			return postgres.MapError(err, table, "all")
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
