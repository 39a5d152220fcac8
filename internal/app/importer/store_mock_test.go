package importer

import (
	"context"
	"slices"
	"sync"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// memStore is an in-memory Store. RunInTx restores the previous state when
// fn fails, so tests can observe rollback.
type memStore struct {
	mu sync.Mutex

	units    []*domain.Unit
	sections []*domain.Section
	words    []*domain.Word
	forms    []domain.WordForm
	links    []*domain.SectionWord
	files    []*domain.AudioFile
	segments []*domain.AudioSegment
	modes    []domain.GameMode
	books    []domain.Storybook

	// failOn maps a method name to the error it returns.
	failOn map[string]error

	callLog []string
}

func newMemStore() *memStore {
	return &memStore{failOn: make(map[string]error)}
}

type memState struct {
	units    []*domain.Unit
	sections []*domain.Section
	words    []*domain.Word
	forms    []domain.WordForm
	links    []*domain.SectionWord
	files    []*domain.AudioFile
	segments []*domain.AudioSegment
	modes    []domain.GameMode
	books    []domain.Storybook
}

func (m *memStore) call(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, name)
	return m.failOn[name]
}

func (m *memStore) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.callLog)
}

func (m *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.call("RunInTx"); err != nil {
		return err
	}
	m.mu.Lock()
	snap := memState{
		units:    slices.Clone(m.units),
		sections: slices.Clone(m.sections),
		words:    slices.Clone(m.words),
		forms:    slices.Clone(m.forms),
		links:    slices.Clone(m.links),
		files:    slices.Clone(m.files),
		segments: slices.Clone(m.segments),
		modes:    slices.Clone(m.modes),
		books:    slices.Clone(m.books),
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.units, m.sections, m.words = snap.units, snap.sections, snap.words
		m.forms, m.links = snap.forms, snap.links
		m.files, m.segments = snap.files, snap.segments
		m.modes, m.books = snap.modes, snap.books
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) HasUnits(context.Context) (bool, error) {
	if err := m.call("HasUnits"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.units) > 0, nil
}

func (m *memStore) HasAudioFiles(context.Context) (bool, error) {
	if err := m.call("HasAudioFiles"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files) > 0, nil
}

func (m *memStore) HasGameModes(context.Context) (bool, error) {
	if err := m.call("HasGameModes"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.modes) > 0, nil
}

func (m *memStore) HasStorybooks(context.Context) (bool, error) {
	if err := m.call("HasStorybooks"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.books) > 0, nil
}

func insertInto[T any](m *memStore, name string, dst *[]T, items []T) (int, error) {
	if err := m.call(name); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	*dst = append(*dst, items...)
	return len(items), nil
}

func (m *memStore) InsertUnits(_ context.Context, units []*domain.Unit) (int, error) {
	return insertInto(m, "InsertUnits", &m.units, units)
}

func (m *memStore) InsertSections(_ context.Context, sections []*domain.Section) (int, error) {
	return insertInto(m, "InsertSections", &m.sections, sections)
}

func (m *memStore) InsertWords(_ context.Context, words []*domain.Word) (int, error) {
	return insertInto(m, "InsertWords", &m.words, words)
}

func (m *memStore) InsertWordForms(_ context.Context, forms []domain.WordForm) (int, error) {
	return insertInto(m, "InsertWordForms", &m.forms, forms)
}

func (m *memStore) InsertSectionWords(_ context.Context, links []*domain.SectionWord) (int, error) {
	return insertInto(m, "InsertSectionWords", &m.links, links)
}

func (m *memStore) InsertAudioFiles(_ context.Context, files []*domain.AudioFile) (int, error) {
	return insertInto(m, "InsertAudioFiles", &m.files, files)
}

func (m *memStore) InsertAudioSegments(_ context.Context, segments []*domain.AudioSegment) (int, error) {
	return insertInto(m, "InsertAudioSegments", &m.segments, segments)
}

func (m *memStore) InsertGameModes(_ context.Context, modes []domain.GameMode) (int, error) {
	return insertInto(m, "InsertGameModes", &m.modes, modes)
}

func (m *memStore) InsertStorybooks(_ context.Context, books []domain.Storybook) (int, error) {
	return insertInto(m, "InsertStorybooks", &m.books, books)
}

func (m *memStore) WordIDs(context.Context) (map[string]bool, error) {
	if err := m.call("WordIDs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool, len(m.words))
	for _, w := range m.words {
		ids[w.ID] = true
	}
	return ids, nil
}

func (m *memStore) LoadGraph(context.Context) (*domain.Graph, error) {
	if err := m.call("LoadGraph"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.Graph{Units: slices.Clone(m.units), Words: slices.Clone(m.words)}, nil
}

func (m *memStore) DeleteAll(context.Context) error {
	if err := m.call("DeleteAll"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units, m.sections, m.words, m.forms, m.links = nil, nil, nil, nil, nil
	m.files, m.segments, m.modes, m.books = nil, nil, nil, nil
	return nil
}
