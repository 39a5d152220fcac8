package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphBuilder_Build(t *testing.T) {
	t.Parallel()

	b := NewGraphBuilder()
	b.AddUnit(&Unit{ID: "unite1", Number: 1})
	b.AddUnit(&Unit{ID: "unite2", Number: 2})
	b.AddSection("unite1", &Section{ID: "u1s1", OrderIndex: 1})
	b.AddSection("unite2", &Section{ID: "u2s1", OrderIndex: 1})
	for _, id := range []string{"zèbre", "chat", "bureau", "lonely"} {
		b.AddWord(&Word{ID: id, Canonical: id})
	}
	b.AddForm(WordForm{ID: uuid.New(), WordID: "chat", Position: 0, IsMainForm: true})
	b.AddLink(uuid.New(), "u1s1", "chat", 0)
	b.AddLink(uuid.New(), "u1s1", "zèbre", 1)
	b.AddLink(uuid.New(), "u2s1", "bureau", 0)
	b.AddLink(uuid.New(), "u2s1", "chat", 1)
	file := AudioFile{ID: uuid.New(), FileName: "all.mp3"}
	b.AddSegment(file, &AudioSegment{ID: uuid.New(), WordID: "chat", StartTime: 0, EndTime: 1})
	b.AddSegment(file, &AudioSegment{ID: uuid.New(), WordID: "bureau", StartTime: 1, EndTime: 2})

	g, err := b.Build()
	require.NoError(t, err)

	ids := make([]string, len(g.Words))
	for i, w := range g.Words {
		ids[i] = w.ID
	}
	assert.Equal(t, []string{"chat", "zèbre", "bureau", "lonely"}, ids, "first appearance, unlinked last")

	chat := g.Words[0]
	require.Len(t, chat.SectionWords, 2)
	assert.Equal(t, "u1s1", chat.FirstSection().ID)
	assert.Equal(t, 1, chat.FirstSection().Unit.Number)
	_, ok := chat.MainForm()
	assert.True(t, ok)

	require.Len(t, chat.AudioSegments, 1)
	bureau, _ := g.WordByID("bureau")
	assert.Same(t, chat.AudioSegments[0].File, bureau.AudioSegments[0].File, "one file shared by its segments")
	assert.Len(t, chat.AudioSegments[0].File.Segments, 2)

	assert.Equal(t, Counts{Units: 2, Sections: 2, Words: 4, SectionWords: 4, Forms: 1}, g.Counts())
}

func TestGraphBuilder_DanglingReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(*GraphBuilder)
	}{
		{"section without unit", func(b *GraphBuilder) { b.AddSection("nope", &Section{ID: "s"}) }},
		{"form without word", func(b *GraphBuilder) { b.AddForm(WordForm{WordID: "nope"}) }},
		{"link without section", func(b *GraphBuilder) {
			b.AddWord(&Word{ID: "chat"})
			b.AddLink(uuid.New(), "nope", "chat", 0)
		}},
		{"link without word", func(b *GraphBuilder) {
			b.AddUnit(&Unit{ID: "u"})
			b.AddSection("u", &Section{ID: "s"})
			b.AddLink(uuid.New(), "s", "nope", 0)
		}},
		{"segment without word", func(b *GraphBuilder) { b.AddSegment(AudioFile{}, &AudioSegment{WordID: "nope"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewGraphBuilder()
			tt.build(b)
			_, err := b.Build()
			assert.ErrorContains(t, err, "nope")
		})
	}
}
