package domain

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// idNamespace seeds every name-based identifier so that re-importing the same
// corpus yields byte-identical ids.
var idNamespace = uuid.MustParse("0f5c2a8e-6d1b-5e43-9a7f-3c2b1d4e5f60")

// SectionWordID derives the id of the link at position index within a section.
func SectionWordID(sectionID string, index int) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte("section_word/"+sectionID+"/"+strconv.Itoa(index)))
}

// WordFormID derives the id of the form at position index of a word.
func WordFormID(wordID string, index int) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte("word_form/"+wordID+"/"+strconv.Itoa(index)))
}

// AudioFileID derives the id of an audio file from its file name.
func AudioFileID(fileName string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte("audio_file/"+fileName))
}

// AudioSegmentID derives the id of the segment at position index of a file.
func AudioSegmentID(fileName string, index int) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte("audio_segment/"+fileName+"/"+strconv.Itoa(index)))
}

// Unit is an ordered top-level course module. It owns its sections.
// Position is the unit's index in the corpus; graphs read back from a store
// list units by Position, not by Number.
type Unit struct {
	ID            string
	Number        int
	Position      int
	Title         string
	IsUnlocked    bool
	RequiredStars int
	RequiredGems  int
	Sections      []*Section
}

// CanUnlock reports whether either currency meets its threshold.
func (u *Unit) CanUnlock(stars, gems int) bool {
	if u.IsUnlocked {
		return true
	}
	return stars >= u.RequiredStars || (u.RequiredGems > 0 && gems >= u.RequiredGems)
}

// Section is a named sub-grouping of vocabulary within a Unit.
// Unit is a non-owning back-reference.
type Section struct {
	ID           string
	Name         string
	OrderIndex   int
	Unit         *Unit
	SectionWords []*SectionWord
}

// Words returns the section's words ordered by link order index.
func (s *Section) Words() []*Word {
	words := make([]*Word, len(s.SectionWords))
	for i, sw := range s.SectionWords {
		words[i] = sw.Word
	}
	return words
}

// Word is a canonical lexical entry shared by every section it occurs in.
// ID equals the canonical spelling.
type Word struct {
	ID            string
	Canonical     string
	Translation   string
	ImageName     string
	PartOfSpeech  PartOfSpeech
	Category      string
	Forms         []WordForm
	SectionWords  []*SectionWord
	AudioSegments []*AudioSegment
}

// MainForm returns the form flagged as the primary rendering, if any.
func (w *Word) MainForm() (WordForm, bool) {
	for _, f := range w.Forms {
		if f.IsMainForm {
			return f, true
		}
	}
	return WordForm{}, false
}

// FirstSection returns the section of the word's first link, or nil.
func (w *Word) FirstSection() *Section {
	if len(w.SectionWords) == 0 {
		return nil
	}
	return w.SectionWords[0].Section
}

// SectionWord links one Section to one Word with an order index local to the section.
type SectionWord struct {
	ID         uuid.UUID
	OrderIndex int
	Section    *Section
	Word       *Word
}

// WordForm is one article/number rendering of a noun. Owned by its Word.
type WordForm struct {
	ID          uuid.UUID
	WordID      string
	Position    int
	Kind        FormKind
	French      string
	ArticleOnly *string
	Gender      *Gender
	Number      *GrammaticalNumber
	IsMainForm  bool
}

// AudioFile is a physical multi-word recording (legacy timestamp format).
type AudioFile struct {
	ID       uuid.UUID
	FileName string
	FilePath string
	Duration float64
	Segments []*AudioSegment
}

// AudioSegment marks the time range of one word inside an AudioFile.
type AudioSegment struct {
	ID         uuid.UUID
	WordID     string
	Word       *Word
	File       *AudioFile
	StartTime  float64
	EndTime    float64
	FormKind   FormKind
	Quality    AudioQuality
	Confidence float64
}

// Validate checks the time range and confidence bounds.
func (s *AudioSegment) Validate() error {
	var errs []FieldError
	if s.WordID == "" {
		errs = append(errs, FieldError{Field: "word", Message: "required"})
	}
	if s.StartTime < 0 {
		errs = append(errs, FieldError{Field: "start", Message: "must be >= 0"})
	}
	if s.StartTime >= s.EndTime {
		errs = append(errs, FieldError{Field: "end", Message: fmt.Sprintf("must be greater than start (%g >= %g)", s.StartTime, s.EndTime)})
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		errs = append(errs, FieldError{Field: "confidence", Message: fmt.Sprintf("must be within [0, 1] (got %g)", s.Confidence)})
	}
	if !s.FormKind.IsValid() {
		errs = append(errs, FieldError{Field: "formType", Message: fmt.Sprintf("unknown form kind %q", s.FormKind)})
	}
	if !s.Quality.IsValid() {
		errs = append(errs, FieldError{Field: "quality", Message: fmt.Sprintf("unknown quality %q", s.Quality)})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Graph is the result of one assembly run: the unit tree plus the word
// registry that owns every shared Word, in first-seen order.
type Graph struct {
	Units []*Unit
	Words []*Word
}

// Counts summarizes the size of a graph.
type Counts struct {
	Units        int
	Sections     int
	Words        int
	SectionWords int
	Forms        int
}

// Counts walks the graph and totals each entity kind.
func (g *Graph) Counts() Counts {
	c := Counts{Units: len(g.Units), Words: len(g.Words)}
	for _, u := range g.Units {
		c.Sections += len(u.Sections)
		for _, s := range u.Sections {
			c.SectionWords += len(s.SectionWords)
		}
	}
	for _, w := range g.Words {
		c.Forms += len(w.Forms)
	}
	return c
}

// WordByID returns the registry entry with the given id.
func (g *Graph) WordByID(id string) (*Word, bool) {
	for _, w := range g.Words {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

// SectionByID returns the section with the given id.
func (g *Graph) SectionByID(id string) (*Section, bool) {
	for _, u := range g.Units {
		for _, s := range u.Sections {
			if s.ID == id {
				return s, true
			}
		}
	}
	return nil, false
}
