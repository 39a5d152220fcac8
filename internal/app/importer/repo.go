// Package importer orchestrates the content import: corpus parsing, graph
// assembly and atomic persistence, plus the independent catalog loaders.
package importer

import (
	"context"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// Store is the persistence contract consumed by the import pipeline.
// All methods use only domain types. Implemented by postgres.Store and sqlite.Store.
//
// Inserts called inside RunInTx join its transaction; deleting an owning row
// cascades to everything it owns.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Idempotency guards.
	HasUnits(ctx context.Context) (bool, error)
	HasAudioFiles(ctx context.Context) (bool, error)
	HasGameModes(ctx context.Context) (bool, error)
	HasStorybooks(ctx context.Context) (bool, error)

	// Batch inserts, parent before child. Each returns the number of rows written.
	InsertUnits(ctx context.Context, units []*domain.Unit) (int, error)
	InsertSections(ctx context.Context, sections []*domain.Section) (int, error)
	InsertWords(ctx context.Context, words []*domain.Word) (int, error)
	InsertWordForms(ctx context.Context, forms []domain.WordForm) (int, error)
	InsertSectionWords(ctx context.Context, links []*domain.SectionWord) (int, error)
	InsertAudioFiles(ctx context.Context, files []*domain.AudioFile) (int, error)
	InsertAudioSegments(ctx context.Context, segments []*domain.AudioSegment) (int, error)
	InsertGameModes(ctx context.Context, modes []domain.GameMode) (int, error)
	InsertStorybooks(ctx context.Context, books []domain.Storybook) (int, error)

	// Lookups.
	WordIDs(ctx context.Context) (map[string]bool, error)
	LoadGraph(ctx context.Context) (*domain.Graph, error)

	// DeleteAll removes every imported row.
	DeleteAll(ctx context.Context) error
}
