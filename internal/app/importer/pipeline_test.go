package importer

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/vocfr-backend/internal/app/importer/corpus"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

const timestampsDoc = `{"files": [
  {"fileName": "unite1_all.mp3", "filePath": "Audio/unite1_all.mp3", "duration": 12.5, "segments": [
    {"wordId": "bureau", "formType": "INDEFINITE_ARTICLE", "startTime": 0.0, "endTime": 1.2},
    {"wordId": "orange", "formType": "DEFINITE_ARTICLE", "startTime": 1.5, "endTime": 2.4, "quality": "high", "confidence": 0.75},
    {"wordId": "zèbre", "formType": "INDEFINITE_ARTICLE", "startTime": 3.0, "endTime": 4.0}
  ]}
]}`

const gameModesDoc = `[
  {"id": "listening", "name": "Listening", "nameInChinese": "听力", "descriptionText": "Pick the word you hear",
   "isUnlocked": true, "requiredGems": 0, "orderIndex": 1, "iconName": "ear"},
  {"id": "memory", "name": "Memory", "nameInChinese": "记忆", "descriptionText": "Match pairs",
   "isUnlocked": false, "requiredGems": 20, "orderIndex": 2, "iconName": "brain"}
]`

const storybooksDoc = `{"storybooks": [
  {"id": "story1", "title": "Le chat", "titleInChinese": "猫", "uniteId": "unite1", "isUnlocked": true,
   "requiredGems": 0, "orderIndex": 1, "coverImageName": "chat_cover",
   "pages": [
     {"pageNumber": 1, "contentFrench": "Voici un chat.", "contentChinese": "这是一只猫。"},
     {"pageNumber": 2, "contentFrench": "Le chat dort.", "contentChinese": "猫在睡觉。", "audioFileName": "story1_p2"}
   ]}
]}`

func fullBundle() map[string]string {
	return map[string]string{
		"Data/JSON/vocabulary.json":      vocabularyDoc,
		"Data/JSON/AudioTimestamps.json": timestampsDoc,
		"Data/JSON/GameModes.json":       gameModesDoc,
		"Data/JSON/Storybooks.json":      storybooksDoc,
	}
}

func newTestPipeline(store Store, files map[string]string, cfg Config) *Pipeline {
	loader := corpus.NewLoader(discard(), contentFS(files), cfg.SearchDirs()...)
	return NewPipeline(discard(), store, loader, cfg)
}

func TestPipeline_AllPhases(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	p := newTestPipeline(store, fullBundle(), testConfig)

	require.NoError(t, p.Run(context.Background(), nil))
	assert.False(t, p.HasErrors())

	results := p.Results()
	require.Len(t, results, 4)
	assert.Equal(t, 2+3+4+12+5, results[PhaseVocabulary].Inserted)

	audio := results[PhaseAudioSegments]
	assert.Equal(t, 3, audio.Inserted, "one file and two segments")
	assert.Equal(t, 1, audio.Skipped, "segment for unknown word")
	require.Len(t, store.segments, 2)
	assert.Equal(t, "orange", store.segments[1].WordID)
	assert.Equal(t, domain.AudioQualityHigh, store.segments[1].Quality)

	assert.Equal(t, 2, results[PhaseGameModes].Inserted)
	assert.Equal(t, 1, results[PhaseStorybooks].Inserted)
	require.Len(t, store.books, 1)
	assert.Len(t, store.books[0].Pages, 2)
}

func TestPipeline_SecondRunSkipsEveryPhase(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	ctx := context.Background()
	require.NoError(t, newTestPipeline(store, fullBundle(), testConfig).Run(ctx, nil))

	p := newTestPipeline(store, fullBundle(), testConfig)
	require.NoError(t, p.Run(ctx, nil))
	for phase, r := range p.Results() {
		assert.Zero(t, r.Inserted, phase)
		assert.Equal(t, 1, r.Skipped, phase)
		assert.NoError(t, r.Err, phase)
	}
	assert.Len(t, store.modes, 2)
}

func TestPipeline_MissingFileDoesNotStopLaterPhases(t *testing.T) {
	t.Parallel()

	files := fullBundle()
	delete(files, "Data/JSON/GameModes.json")

	store := newMemStore()
	p := newTestPipeline(store, files, testConfig)
	require.NoError(t, p.Run(context.Background(), nil))

	gm := p.Results()[PhaseGameModes]
	assert.ErrorIs(t, gm.Err, domain.ErrFileNotFound)
	assert.True(t, gm.IsMissingContent())
	assert.True(t, p.HasErrors())

	assert.Equal(t, 1, p.Results()[PhaseStorybooks].Inserted)
	assert.Empty(t, store.modes)
}

func TestPipeline_PhaseFailureIsIsolated(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.failOn["InsertAudioSegments"] = errors.New("constraint violation")
	p := newTestPipeline(store, fullBundle(), testConfig)
	require.NoError(t, p.Run(context.Background(), nil))

	audio := p.Results()[PhaseAudioSegments]
	assert.ErrorIs(t, audio.Err, domain.ErrPersistence)
	assert.False(t, audio.IsMissingContent())
	assert.Empty(t, store.files, "audio files rolled back with their segments")

	assert.Len(t, store.words, 4)
	assert.Len(t, store.modes, 2)
}

func TestPipeline_PhaseFilter(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	p := newTestPipeline(store, fullBundle(), testConfig)
	require.NoError(t, p.Run(context.Background(), []string{PhaseStorybooks, PhaseGameModes}))

	assert.Len(t, p.Results(), 2)
	assert.Empty(t, store.units)
	assert.Len(t, store.modes, 2)
	assert.Len(t, store.books, 1)

	calls := store.calls()
	assert.Less(t, slices.Index(calls, "InsertGameModes"), slices.Index(calls, "InsertStorybooks"), "canonical order")
}

func TestPipeline_UnknownPhase(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	p := newTestPipeline(store, fullBundle(), testConfig)

	err := p.Run(context.Background(), []string{PhaseGameModes, "wordnet"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, store.calls())
}

func TestPipeline_DryRun(t *testing.T) {
	t.Parallel()

	cfg := testConfig
	cfg.DryRun = true
	store := newMemStore()
	p := newTestPipeline(store, fullBundle(), cfg)
	require.NoError(t, p.Run(context.Background(), nil))

	assert.False(t, p.HasErrors())
	assert.NotContains(t, store.calls(), "RunInTx")
	assert.Equal(t, 2, p.Results()[PhaseGameModes].Skipped)

	known, err := p.knownWords(context.Background())
	require.NoError(t, err)
	assert.True(t, known["bureau"], "planned by the dry-run vocabulary phase")
	assert.True(t, known["orange"])
	assert.False(t, known["zèbre"])
	assert.Equal(t, 4, p.Results()[PhaseAudioSegments].Skipped, "one file, two segments, one unknown word")
}

func TestPipeline_DryRun_AudioWithoutVocabulary(t *testing.T) {
	t.Parallel()

	cfg := testConfig
	cfg.DryRun = true
	p := newTestPipeline(newMemStore(), fullBundle(), cfg)
	require.NoError(t, p.Run(context.Background(), []string{PhaseAudioSegments}))

	known, err := p.knownWords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, known)
}

func TestPipeline_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(newMemStore(), fullBundle(), testConfig)
	assert.ErrorIs(t, p.Run(ctx, nil), context.Canceled)
	assert.Empty(t, p.Results())
}

func TestPhases(t *testing.T) {
	t.Parallel()

	got := Phases()
	assert.Equal(t, []string{"vocabulary", "audio_segments", "game_modes", "storybooks"}, got)
	got[0] = "changed"
	assert.Equal(t, PhaseVocabulary, Phases()[0])
}
