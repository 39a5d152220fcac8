//go:build integration

package content_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/vocfr-backend/internal/adapter/postgres"
	"github.com/heartmarshall/vocfr-backend/internal/adapter/postgres/content"
	"github.com/heartmarshall/vocfr-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/vocfr-backend/internal/app/importer"
	"github.com/heartmarshall/vocfr-backend/internal/app/importer/corpus"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

const doc = `{
  "version": "1", "lastUpdated": "2025-01-10", "description": "it",
  "unites": [
    {"id": "unite1", "number": 1, "title": "À l'école", "isUnlocked": true, "requiredStars": 0,
     "sections": [
       {"id": "u1s1", "name": "La classe", "orderIndex": 1, "words": [
         {"canonical": "éponge", "chinese": "海绵", "partOfSpeech": "noun", "genderOrPos": "feminine", "category": "school", "elision": true},
         {"canonical": "orange", "chinese": "橙子", "partOfSpeech": "noun", "genderOrPos": "feminine", "category": "food", "elision": false}
       ]},
       {"id": "u1s2", "name": "Les couleurs", "orderIndex": 2, "words": [
         {"canonical": "orange", "chinese": "橙色", "partOfSpeech": "noun", "genderOrPos": "feminine", "category": "color", "elision": false},
         {"canonical": "rouge", "chinese": "红色", "partOfSpeech": "adjective", "genderOrPos": "adjective", "category": "color", "elision": false}
       ]}
     ]}
  ]
}`

const timestamps = `{"files": [{"fileName": "u1.mp3", "filePath": "Audio/u1.mp3", "duration": 5,
  "segments": [{"wordId": "rouge", "formType": "INDEFINITE_ARTICLE", "startTime": 0.5, "endTime": 1.5}]}]}`

type store struct {
	*postgres.TxManager
	*content.Repo
}

func setup(t *testing.T) (store, *importer.Pipeline) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	s := store{TxManager: postgres.NewTxManager(pool), Repo: content.New(pool)}

	fsys := fstest.MapFS{
		"vocabulary.json":      {Data: []byte(doc)},
		"AudioTimestamps.json": {Data: []byte(timestamps)},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := importer.NewPipeline(log, s, corpus.NewLoader(log, fsys), importer.Config{BatchSize: 2})
	return s, p
}

func TestImport_RoundTrip(t *testing.T) {
	s, p := setup(t)
	ctx := context.Background()

	res, err := p.Importer().ImportIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{Units: 1, Sections: 2, Words: 3, SectionWords: 4, Forms: 8}, res.Counts)

	require.NoError(t, p.Run(ctx, []string{importer.PhaseAudioSegments}))
	assert.False(t, p.HasErrors())

	g, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Counts, g.Counts())

	ids := make([]string, len(g.Words))
	for i, w := range g.Words {
		ids[i] = w.ID
	}
	assert.Equal(t, []string{"éponge", "orange", "rouge"}, ids)

	eponge := g.Words[0]
	require.Len(t, eponge.Forms, 4)
	assert.Equal(t, "l'éponge", eponge.Forms[1].French)
	assert.True(t, eponge.Forms[0].IsMainForm)

	rouge := g.Words[2]
	require.Len(t, rouge.AudioSegments, 1)
	assert.Equal(t, "u1.mp3", rouge.AudioSegments[0].File.FileName)

	again, err := p.Importer().ImportIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
}

func TestImport_RollsBackOnConflict(t *testing.T) {
	s, p := setup(t)
	ctx := context.Background()

	_, err := s.InsertWords(ctx, []*domain.Word{{ID: "rouge", Canonical: "rouge", PartOfSpeech: domain.PartOfSpeechAdjective}})
	require.NoError(t, err)

	_, err = p.Importer().ImportIfEmpty(ctx)
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	has, err := s.HasUnits(ctx)
	require.NoError(t, err)
	assert.False(t, has, "units rolled back")

	ids, err := s.WordIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"rouge": true}, ids)
}

func TestReset_CascadesAndAllowsReimport(t *testing.T) {
	s, p := setup(t)
	ctx := context.Background()

	require.NoError(t, p.Run(ctx, nil))
	require.NoError(t, p.Importer().Reset(ctx))

	for name, has := range map[string]func(context.Context) (bool, error){
		"units": s.HasUnits, "audio_files": s.HasAudioFiles, "game_modes": s.HasGameModes, "storybooks": s.HasStorybooks,
	} {
		ok, err := has(ctx)
		require.NoError(t, err, name)
		assert.False(t, ok, name)
	}
	ids, err := s.WordIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	res, err := p.Importer().ImportIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Counts.Words)
}

func TestImport_KeepsCorpusUnitOrder(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	s := store{TxManager: postgres.NewTxManager(pool), Repo: content.New(pool)}
	ctx := context.Background()

	outOfOrder := `{
  "version": "1", "lastUpdated": "2025-01-10", "description": "order",
  "unites": [
    {"id": "unite2", "number": 2, "title": "Deux", "isUnlocked": true, "requiredStars": 0,
     "sections": [{"id": "u2s1", "name": "Le bureau", "orderIndex": 1, "words": [
       {"canonical": "bureau", "chinese": "办公室", "partOfSpeech": "noun", "genderOrPos": "masculine", "category": "work", "elision": false}
     ]}]},
    {"id": "unite1", "number": 1, "title": "Un", "isUnlocked": true, "requiredStars": 0,
     "sections": [{"id": "u1s1", "name": "La classe", "orderIndex": 1, "words": [
       {"canonical": "bureau", "chinese": "书桌", "partOfSpeech": "noun", "genderOrPos": "masculine", "category": "school", "elision": false}
     ]}]}
  ]
}`
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	fsys := fstest.MapFS{"vocabulary.json": {Data: []byte(outOfOrder)}}
	_, err := importer.NewImporter(log, s, corpus.NewLoader(log, fsys), importer.Config{BatchSize: 1}).ImportIfEmpty(ctx)
	require.NoError(t, err)

	g, err := s.LoadGraph(ctx)
	require.NoError(t, err)
	require.Len(t, g.Units, 2)
	assert.Equal(t, "unite2", g.Units[0].ID)
	assert.Equal(t, "unite1", g.Units[1].ID)

	bureau, ok := g.WordByID("bureau")
	require.True(t, ok)
	assert.Equal(t, "u2s1", bureau.FirstSection().ID)
}
