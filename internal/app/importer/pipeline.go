package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/vocfr-backend/internal/app/importer/corpus"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
	"github.com/heartmarshall/vocfr-backend/pkg/ctxutil"
)

// Phase names, in canonical execution order.
const (
	PhaseVocabulary    = "vocabulary"
	PhaseAudioSegments = "audio_segments"
	PhaseGameModes     = "game_modes"
	PhaseStorybooks    = "storybooks"
)

// allPhases defines the canonical execution order. Audio segments reference
// words, so they run after the vocabulary.
var allPhases = []string{PhaseVocabulary, PhaseAudioSegments, PhaseGameModes, PhaseStorybooks}

// Phases returns the phase names in execution order.
func Phases() []string {
	return slices.Clone(allPhases)
}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Inserted int
	Skipped  int
	Errors   int
	Duration time.Duration
	Err      error
}

// Pipeline runs the content loaders. Each phase has its own idempotency
// guard and transaction; a failing phase does not stop the ones after it.
type Pipeline struct {
	log      *slog.Logger
	store    Store
	loader   *corpus.Loader
	importer *Importer
	cfg      Config
	results  map[string]PhaseResult
	// planned holds the word ids a dry-run vocabulary phase would have written.
	planned map[string]bool
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, store Store, loader *corpus.Loader, cfg Config) *Pipeline {
	return &Pipeline{
		log:      log,
		store:    store,
		loader:   loader,
		importer: NewImporter(log, store, loader, cfg),
		cfg:      cfg,
		results:  make(map[string]PhaseResult),
	}
}

// Importer returns the vocabulary importer the pipeline runs its first phase with.
func (p *Pipeline) Importer() *Importer {
	return p.importer
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// HasErrors returns true if any phase recorded errors.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil || r.Errors > 0 {
			return true
		}
	}
	return false
}

// Run executes the pipeline. If phases is non-empty, only the listed phases
// run, still in canonical order. An unknown phase name is rejected before
// anything runs.
func (p *Pipeline) Run(ctx context.Context, phases []string) error {
	toRun := allPhases
	if len(phases) > 0 {
		filter := make(map[string]bool, len(phases))
		for _, ph := range phases {
			if !slices.Contains(allPhases, ph) {
				return domain.NewValidationError("phase", fmt.Sprintf("unknown phase %q", ph))
			}
			filter[ph] = true
		}
		var filtered []string
		for _, ph := range allPhases {
			if filter[ph] {
				filtered = append(filtered, ph)
			}
		}
		toRun = filtered
	}

	runID := uuid.New()
	ctx = ctxutil.WithRunID(ctx, runID)
	log := p.log.With(slog.String("run_id", runID.String()))

	for _, phase := range toRun {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		log.Info("starting phase", slog.String("phase", phase))

		phaseCtx := ctxutil.WithPhase(ctx, phase)
		var result PhaseResult
		switch phase {
		case PhaseVocabulary:
			result = p.runVocabulary(phaseCtx)
		case PhaseAudioSegments:
			result = p.runAudioSegments(phaseCtx)
		case PhaseGameModes:
			result = p.runGameModes(phaseCtx)
		case PhaseStorybooks:
			result = p.runStorybooks(phaseCtx)
		}
		result.Duration = time.Since(start)
		p.results[phase] = result

		if result.Err != nil {
			log.Warn("phase failed",
				slog.String("phase", phase),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
		} else {
			log.Info("phase completed",
				slog.String("phase", phase),
				slog.Int("inserted", result.Inserted),
				slog.Int("skipped", result.Skipped),
				slog.Duration("duration", result.Duration),
			)
		}
	}

	log.Info("pipeline completed", slog.Int("phases_run", len(toRun)))
	return nil
}

func (p *Pipeline) runVocabulary(ctx context.Context) PhaseResult {
	res, err := p.importer.ImportIfEmpty(ctx)
	if err != nil {
		return PhaseResult{Errors: 1, Err: err}
	}
	c := res.Counts
	switch {
	case res.Skipped:
		return PhaseResult{Skipped: 1}
	case res.DryRun:
		p.planned = make(map[string]bool, len(res.Graph.Words))
		for _, w := range res.Graph.Words {
			p.planned[w.ID] = true
		}
		return PhaseResult{Skipped: c.Units + c.Sections + c.Words + c.Forms + c.SectionWords}
	}
	return PhaseResult{Inserted: c.Units + c.Sections + c.Words + c.Forms + c.SectionWords}
}

// runAudioSegments loads the legacy shared-recording timestamps. Segments
// pointing at a word that is not in the store are skipped. Under a dry run
// the words the vocabulary phase would have written count as stored.
func (p *Pipeline) runAudioSegments(ctx context.Context) PhaseResult {
	log := runLogger(ctx, p.log)

	exists, err := p.store.HasAudioFiles(ctx)
	if err != nil {
		return PhaseResult{Errors: 1, Err: fmt.Errorf("%w: check audio files: %w", domain.ErrPersistence, err)}
	}
	if exists {
		log.Info("audio files already present, skipping")
		return PhaseResult{Skipped: 1}
	}

	data, path, err := p.loader.ReadFile(TimestampsFile)
	if err != nil {
		return PhaseResult{Err: err}
	}
	files, err := ParseTimestamps(data)
	if err != nil {
		return PhaseResult{Errors: 1, Err: fmt.Errorf("parse %s: %w", path, err)}
	}

	known, err := p.knownWords(ctx)
	if err != nil {
		return PhaseResult{Errors: 1, Err: err}
	}

	var (
		segments []*domain.AudioSegment
		skipped  int
	)
	for _, f := range files {
		kept := f.Segments[:0]
		for _, s := range f.Segments {
			if !known[s.WordID] {
				log.Debug("segment for unknown word skipped",
					slog.String("file", f.FileName),
					slog.String("word", s.WordID),
				)
				skipped++
				continue
			}
			kept = append(kept, s)
		}
		f.Segments = kept
		segments = append(segments, kept...)
	}

	if p.cfg.DryRun {
		return PhaseResult{Skipped: skipped + len(files) + len(segments)}
	}

	var inserted int
	err = p.store.RunInTx(ctx, func(ctx context.Context) error {
		n, err := batchProcess(files, p.cfg.BatchSize, func(b []*domain.AudioFile) (int, error) {
			return p.store.InsertAudioFiles(ctx, b)
		})
		if err != nil {
			return fmt.Errorf("insert audio files: %w", err)
		}
		m, err := batchProcess(segments, p.cfg.BatchSize, func(b []*domain.AudioSegment) (int, error) {
			return p.store.InsertAudioSegments(ctx, b)
		})
		if err != nil {
			return fmt.Errorf("insert audio segments: %w", err)
		}
		inserted = n + m
		return nil
	})
	if err != nil {
		return PhaseResult{Errors: 1, Err: fmt.Errorf("%w: %w", domain.ErrPersistence, err)}
	}
	return PhaseResult{Inserted: inserted, Skipped: skipped}
}

func (p *Pipeline) knownWords(ctx context.Context) (map[string]bool, error) {
	known, err := p.store.WordIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load word ids: %w", domain.ErrPersistence, err)
	}
	if known == nil {
		known = make(map[string]bool, len(p.planned))
	}
	for id := range p.planned {
		known[id] = true
	}
	return known, nil
}

func (p *Pipeline) runGameModes(ctx context.Context) PhaseResult {
	return runCatalog(ctx, p, GameModesFile, p.store.HasGameModes, ParseGameModes, p.store.InsertGameModes)
}

func (p *Pipeline) runStorybooks(ctx context.Context) PhaseResult {
	return runCatalog(ctx, p, StorybooksFile, p.store.HasStorybooks, ParseStorybooks, p.store.InsertStorybooks)
}

// runCatalog is the guard → read → parse → insert sequence shared by the
// flat catalog phases.
func runCatalog[T any](
	ctx context.Context,
	p *Pipeline,
	file string,
	exists func(context.Context) (bool, error),
	parse func([]byte) ([]T, error),
	insert func(context.Context, []T) (int, error),
) PhaseResult {
	log := runLogger(ctx, p.log)

	present, err := exists(ctx)
	if err != nil {
		return PhaseResult{Errors: 1, Err: fmt.Errorf("%w: check %s: %w", domain.ErrPersistence, file, err)}
	}
	if present {
		log.Info("catalog already present, skipping", slog.String("file", file))
		return PhaseResult{Skipped: 1}
	}

	data, path, err := p.loader.ReadFile(file)
	if err != nil {
		return PhaseResult{Err: err}
	}
	items, err := parse(data)
	if err != nil {
		return PhaseResult{Errors: 1, Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	if p.cfg.DryRun {
		return PhaseResult{Skipped: len(items)}
	}

	var inserted int
	err = p.store.RunInTx(ctx, func(ctx context.Context) error {
		inserted, err = batchProcess(items, p.cfg.BatchSize, func(b []T) (int, error) {
			return insert(ctx, b)
		})
		return err
	})
	if err != nil {
		return PhaseResult{Errors: 1, Err: fmt.Errorf("%w: insert %s: %w", domain.ErrPersistence, file, err)}
	}
	return PhaseResult{Inserted: inserted}
}

// IsMissingContent reports whether a phase failed only because its content
// file is absent from the bundle.
func (r PhaseResult) IsMissingContent() bool {
	return r.Err != nil && errors.Is(r.Err, domain.ErrFileNotFound)
}
