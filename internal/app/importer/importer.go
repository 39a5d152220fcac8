package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/vocfr-backend/internal/app/importer/assembler"
	"github.com/heartmarshall/vocfr-backend/internal/app/importer/corpus"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
	"github.com/heartmarshall/vocfr-backend/pkg/ctxutil"
)

// errAlreadyImported aborts the insert transaction when another run got there first.
var errAlreadyImported = errors.New("units already present")

// Result reports the outcome of ImportIfEmpty.
type Result struct {
	// Skipped is set when units already existed and nothing was done.
	Skipped bool
	// DryRun is set when the corpus was parsed and assembled but not written.
	DryRun bool
	// Counts holds the rows written, or the rows a dry run would write.
	Counts   domain.Counts
	Duration time.Duration
	// Graph is the assembled graph a dry run would have written.
	Graph *domain.Graph
}

// Importer runs the vocabulary import: parse, assemble, persist atomically.
type Importer struct {
	log    *slog.Logger
	store  Store
	loader *corpus.Loader
	cfg    Config
}

// NewImporter creates a new Importer.
func NewImporter(log *slog.Logger, store Store, loader *corpus.Loader, cfg Config) *Importer {
	return &Importer{log: log, store: store, loader: loader, cfg: cfg}
}

// ImportIfEmpty imports the corpus unless any unit already exists.
//
// Parsing and assembly finish before anything is written, and every insert
// runs in a single transaction: on any error the store is left untouched.
// Errors wrap domain.ErrFileNotFound, domain.ErrMalformedInput,
// domain.ErrValidation or domain.ErrPersistence.
func (im *Importer) ImportIfEmpty(ctx context.Context) (Result, error) {
	start := time.Now()
	if _, ok := ctxutil.RunIDFromCtx(ctx); !ok {
		ctx = ctxutil.WithRunID(ctx, uuid.New())
	}
	log := runLogger(ctx, im.log)

	exists, err := im.store.HasUnits(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: check units: %w", domain.ErrPersistence, err)
	}
	if exists {
		log.Info("units already present, skipping import")
		return Result{Skipped: true, Duration: time.Since(start)}, nil
	}

	doc, err := im.loader.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load corpus: %w", err)
	}
	graph, err := assembler.Assemble(doc)
	if err != nil {
		return Result{}, fmt.Errorf("assemble corpus: %w", err)
	}
	planned := graph.Counts()
	log.Info("corpus assembled",
		slog.String("version", doc.Version),
		slog.Int("units", planned.Units),
		slog.Int("sections", planned.Sections),
		slog.Int("words", planned.Words),
		slog.Int("forms", planned.Forms),
	)

	if im.cfg.DryRun {
		return Result{DryRun: true, Counts: planned, Duration: time.Since(start), Graph: graph}, nil
	}

	var written domain.Counts
	err = im.store.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := im.store.HasUnits(ctx)
		if err != nil {
			return fmt.Errorf("check units: %w", err)
		}
		if exists {
			return errAlreadyImported
		}
		written, err = im.insertGraph(ctx, graph)
		return err
	})
	if errors.Is(err, errAlreadyImported) {
		log.Info("units appeared during import, skipping")
		return Result{Skipped: true, Duration: time.Since(start)}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	res := Result{Counts: written, Duration: time.Since(start)}
	log.Info("vocabulary imported",
		slog.Int("units", written.Units),
		slog.Int("sections", written.Sections),
		slog.Int("words", written.Words),
		slog.Int("section_words", written.SectionWords),
		slog.Int("forms", written.Forms),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}

// insertGraph writes the graph in parent → child order:
// units → sections → words → forms → section words.
func (im *Importer) insertGraph(ctx context.Context, g *domain.Graph) (domain.Counts, error) {
	var (
		sections []*domain.Section
		links    []*domain.SectionWord
		forms    []domain.WordForm
		c        domain.Counts
		err      error
	)
	for _, u := range g.Units {
		sections = append(sections, u.Sections...)
		for _, s := range u.Sections {
			links = append(links, s.SectionWords...)
		}
	}
	for _, w := range g.Words {
		forms = append(forms, w.Forms...)
	}

	if c.Units, err = batchProcess(g.Units, im.cfg.BatchSize, func(b []*domain.Unit) (int, error) {
		return im.store.InsertUnits(ctx, b)
	}); err != nil {
		return c, fmt.Errorf("insert units: %w", err)
	}
	if c.Sections, err = batchProcess(sections, im.cfg.BatchSize, func(b []*domain.Section) (int, error) {
		return im.store.InsertSections(ctx, b)
	}); err != nil {
		return c, fmt.Errorf("insert sections: %w", err)
	}
	if c.Words, err = batchProcess(g.Words, im.cfg.BatchSize, func(b []*domain.Word) (int, error) {
		return im.store.InsertWords(ctx, b)
	}); err != nil {
		return c, fmt.Errorf("insert words: %w", err)
	}
	if c.Forms, err = batchProcess(forms, im.cfg.BatchSize, func(b []domain.WordForm) (int, error) {
		return im.store.InsertWordForms(ctx, b)
	}); err != nil {
		return c, fmt.Errorf("insert word forms: %w", err)
	}
	if c.SectionWords, err = batchProcess(links, im.cfg.BatchSize, func(b []*domain.SectionWord) (int, error) {
		return im.store.InsertSectionWords(ctx, b)
	}); err != nil {
		return c, fmt.Errorf("insert section words: %w", err)
	}
	return c, nil
}

// Reset deletes every imported row in one transaction so the next run starts
// from an empty store.
func (im *Importer) Reset(ctx context.Context) error {
	if err := im.store.RunInTx(ctx, im.store.DeleteAll); err != nil {
		return fmt.Errorf("%w: reset: %w", domain.ErrPersistence, err)
	}
	runLogger(ctx, im.log).Warn("imported content deleted")
	return nil
}

// runLogger decorates log with the run id and phase carried by ctx.
func runLogger(ctx context.Context, log *slog.Logger) *slog.Logger {
	if id, ok := ctxutil.RunIDFromCtx(ctx); ok {
		log = log.With(slog.String("run_id", id.String()))
	}
	if phase := ctxutil.PhaseFromCtx(ctx); phase != "" {
		log = log.With(slog.String("phase", phase))
	}
	return log
}

// batchProcess splits items into batches and processes each via fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
