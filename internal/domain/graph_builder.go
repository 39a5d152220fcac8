package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// GraphBuilder rebuilds a Graph from flat rows, as stores read them back.
// Units and sections must be added in display order, links in section order;
// the word registry is then ordered by first appearance, like a fresh
// assembly would order it.
type GraphBuilder struct {
	graph    *Graph
	units    map[string]*Unit
	sections map[string]*Section
	words    map[string]*Word
	files    map[uuid.UUID]*AudioFile
	err      error
}

// NewGraphBuilder creates an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		graph:    &Graph{},
		units:    make(map[string]*Unit),
		sections: make(map[string]*Section),
		words:    make(map[string]*Word),
		files:    make(map[uuid.UUID]*AudioFile),
	}
}

func (b *GraphBuilder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("rebuild graph: "+format, args...)
	}
}

// AddUnit appends a unit.
func (b *GraphBuilder) AddUnit(u *Unit) {
	u.Sections = nil
	b.units[u.ID] = u
	b.graph.Units = append(b.graph.Units, u)
}

// AddSection appends a section to the unit it belongs to.
func (b *GraphBuilder) AddSection(unitID string, s *Section) {
	u, ok := b.units[unitID]
	if !ok {
		b.fail("section %s: unknown unit %s", s.ID, unitID)
		return
	}
	s.Unit = u
	s.SectionWords = nil
	u.Sections = append(u.Sections, s)
	b.sections[s.ID] = s
}

// AddWord registers a word.
func (b *GraphBuilder) AddWord(w *Word) {
	w.Forms, w.SectionWords, w.AudioSegments = nil, nil, nil
	b.words[w.ID] = w
}

// AddForm attaches a form to its word. Forms must arrive in position order.
func (b *GraphBuilder) AddForm(f WordForm) {
	w, ok := b.words[f.WordID]
	if !ok {
		b.fail("form %s: unknown word %s", f.ID, f.WordID)
		return
	}
	w.Forms = append(w.Forms, f)
}

// AddLink links a word into a section.
func (b *GraphBuilder) AddLink(id uuid.UUID, sectionID, wordID string, orderIndex int) {
	s, ok := b.sections[sectionID]
	if !ok {
		b.fail("section word %s: unknown section %s", id, sectionID)
		return
	}
	w, ok := b.words[wordID]
	if !ok {
		b.fail("section word %s: unknown word %s", id, wordID)
		return
	}
	sw := &SectionWord{ID: id, OrderIndex: orderIndex, Section: s, Word: w}
	s.SectionWords = append(s.SectionWords, sw)
	w.SectionWords = append(w.SectionWords, sw)
}

// AddSegment attaches a timestamp segment to its word and file. The file is
// registered on first sight.
func (b *GraphBuilder) AddSegment(file AudioFile, seg *AudioSegment) {
	w, ok := b.words[seg.WordID]
	if !ok {
		b.fail("audio segment %s: unknown word %s", seg.ID, seg.WordID)
		return
	}
	f, ok := b.files[file.ID]
	if !ok {
		f = &file
		f.Segments = nil
		b.files[f.ID] = f
	}
	seg.Word, seg.File = w, f
	f.Segments = append(f.Segments, seg)
	w.AudioSegments = append(w.AudioSegments, seg)
}

// Build returns the graph, or the first inconsistency found while adding rows.
// Words no section links to come last, by id.
func (b *GraphBuilder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}

	seen := make(map[string]bool, len(b.words))
	for _, u := range b.graph.Units {
		for _, s := range u.Sections {
			for _, sw := range s.SectionWords {
				if !seen[sw.Word.ID] {
					seen[sw.Word.ID] = true
					b.graph.Words = append(b.graph.Words, sw.Word)
				}
			}
		}
	}

	var orphans []*Word
	for id, w := range b.words {
		if !seen[id] {
			orphans = append(orphans, w)
		}
	}
	slices.SortFunc(orphans, func(a, c *Word) int { return strings.Compare(a.ID, c.ID) })
	b.graph.Words = append(b.graph.Words, orphans...)

	return b.graph, nil
}
