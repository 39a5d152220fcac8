// Package assembler builds the Unit → Section → SectionWord → Word graph from
// a parsed corpus, sharing one Word per canonical spelling.
package assembler

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/vocfr-backend/internal/app/importer/corpus"
	"github.com/heartmarshall/vocfr-backend/internal/app/importer/forms"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// Assemble converts a parsed corpus into a graph. The result is
// deterministic: the same document always yields the same ids, order indices
// and forms. Duplicate unit or section ids and blank canonical spellings fail
// the whole run with a domain.ErrValidation.
func Assemble(doc *corpus.Document) (*domain.Graph, error) {
	cache := NewWordCache()
	g := &domain.Graph{Units: make([]*domain.Unit, 0, len(doc.Units))}

	unitIDs := make(map[string]struct{}, len(doc.Units))
	sectionIDs := make(map[string]struct{})

	for ui, ru := range doc.Units {
		if _, dup := unitIDs[ru.ID]; dup {
			return nil, domain.NewValidationError(fmt.Sprintf("unites[%d].id", ui), fmt.Sprintf("duplicate unit id %q", ru.ID))
		}
		unitIDs[ru.ID] = struct{}{}

		u := &domain.Unit{
			ID:            ru.ID,
			Number:        ru.Number,
			Position:      ui,
			Title:         ru.Title,
			IsUnlocked:    ru.IsUnlocked,
			RequiredStars: ru.RequiredStars,
			RequiredGems:  ru.RequiredGems,
			Sections:      make([]*domain.Section, 0, len(ru.Sections)),
		}

		for si, rs := range ru.Sections {
			if _, dup := sectionIDs[rs.ID]; dup {
				return nil, domain.NewValidationError(
					fmt.Sprintf("unites[%d].sections[%d].id", ui, si),
					fmt.Sprintf("duplicate section id %q", rs.ID),
				)
			}
			sectionIDs[rs.ID] = struct{}{}

			s, err := assembleSection(rs, u, cache)
			if err != nil {
				return nil, fmt.Errorf("unites[%d].sections[%d]: %w", ui, si, err)
			}
			u.Sections = append(u.Sections, s)
		}

		g.Units = append(g.Units, u)
	}

	g.Words = cache.Words()
	return g, nil
}

// assembleSection builds one section. Links get contiguous 0-based order
// indices in declaration order; Words come from the shared cache.
func assembleSection(rs corpus.Section, u *domain.Unit, cache *WordCache) (*domain.Section, error) {
	s := &domain.Section{
		ID:           rs.ID,
		Name:         rs.Name,
		OrderIndex:   rs.OrderIndex,
		Unit:         u,
		SectionWords: make([]*domain.SectionWord, 0, len(rs.Words)),
	}

	for i, rw := range rs.Words {
		if strings.TrimSpace(rw.Canonical) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("words[%d].canonical", i), "must not be blank")
		}

		w := cache.LookupOrCreate(rw.Canonical, func() *domain.Word { return newWord(rw) })

		sw := &domain.SectionWord{
			ID:         domain.SectionWordID(s.ID, i),
			OrderIndex: i,
			Section:    s,
			Word:       w,
		}
		s.SectionWords = append(s.SectionWords, sw)
		w.SectionWords = append(w.SectionWords, sw)
	}

	return s, nil
}

// newWord is the cache factory: it runs form generation exactly once per spelling.
func newWord(rw corpus.Word) *domain.Word {
	pos := domain.ParsePartOfSpeech(rw.PartOfSpeech)
	w := &domain.Word{
		ID:           rw.Canonical,
		Canonical:    rw.Canonical,
		Translation:  rw.Chinese,
		ImageName:    domain.ImageAssetName(rw.Canonical),
		PartOfSpeech: pos,
		Category:     rw.Category,
		Forms:        forms.Generate(rw.Canonical, rw.GenderOrPos, pos, rw.Elision),
	}
	for i := range w.Forms {
		w.Forms[i].ID = domain.WordFormID(w.ID, i)
		w.Forms[i].WordID = w.ID
	}
	return w
}
