// Package corpus decodes the vocabulary JSON corpus into an intermediate tree
// that mirrors the input document. It performs no cross-referencing.
package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// Document is the parsed top-level corpus.
type Document struct {
	Version     string
	LastUpdated string
	Description string
	Units       []Unit
}

// Unit is one unit record in declaration order.
type Unit struct {
	ID            string
	Number        int
	Title         string
	IsUnlocked    bool
	RequiredStars int
	RequiredGems  int
	Sections      []Section
}

// Section is one section record in declaration order.
type Section struct {
	ID         string
	Name       string
	OrderIndex int
	Words      []Word
}

// Word is one flat word record.
type Word struct {
	Canonical    string
	Chinese      string
	PartOfSpeech string
	GenderOrPos  string
	Category     string
	Elision      bool
}

// Raw JSON shapes. Pointer fields distinguish "missing" from the zero value
// so required fields can be enforced after decoding.
type (
	documentJSON struct {
		Version     *string     `json:"version"`
		LastUpdated *string     `json:"lastUpdated"`
		Description *string     `json:"description"`
		Unites      *[]unitJSON `json:"unites"`
	}

	unitJSON struct {
		ID            *string        `json:"id"`
		Number        *int           `json:"number"`
		Title         *string        `json:"title"`
		IsUnlocked    *bool          `json:"isUnlocked"`
		RequiredStars *int           `json:"requiredStars"`
		RequiredGems  *int           `json:"requiredGems"`
		Sections      *[]sectionJSON `json:"sections"`
	}

	sectionJSON struct {
		ID         *string     `json:"id"`
		Name       *string     `json:"name"`
		OrderIndex *int        `json:"orderIndex"`
		Words      *[]wordJSON `json:"words"`
	}

	wordJSON struct {
		Canonical    *string `json:"canonical"`
		Chinese      *string `json:"chinese"`
		PartOfSpeech *string `json:"partOfSpeech"`
		GenderOrPos  *string `json:"genderOrPos"`
		Category     *string `json:"category"`
		Elision      *bool   `json:"elision"`
	}
)

// Parse decodes a single-document corpus. Any missing required field or
// mistyped value fails with domain.ErrMalformedInput; nothing is defaulted
// except the optional requiredGems, which is 0 when absent.
func Parse(data []byte) (*Document, error) {
	var raw documentJSON
	if err := Decode(data, &raw); err != nil {
		return nil, err
	}

	var c Checker
	doc := &Document{
		Version:     c.Str(raw.Version, "version"),
		LastUpdated: c.Str(raw.LastUpdated, "lastUpdated"),
		Description: c.Str(raw.Description, "description"),
	}
	if raw.Unites == nil {
		c.Missing("unites")
	} else {
		doc.Units = make([]Unit, 0, len(*raw.Unites))
		for i, u := range *raw.Unites {
			doc.Units = append(doc.Units, c.unit(u, fmt.Sprintf("unites[%d]", i)))
		}
	}

	if err := c.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseUnit decodes a single unit record, as stored in the split layout
// (one Unite{N}.json per unit).
func ParseUnit(data []byte) (Unit, error) {
	var raw unitJSON
	if err := Decode(data, &raw); err != nil {
		return Unit{}, err
	}

	var c Checker
	u := c.unit(raw, "unite")
	if err := c.Err(); err != nil {
		return Unit{}, err
	}
	return u, nil
}

// Decode unmarshals one JSON document into v. Syntax errors, type mismatches
// and trailing data are reported as domain.ErrMalformedInput.
func Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("%w: field %q: expected %s, got %s", domain.ErrMalformedInput, typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after document", domain.ErrMalformedInput)
	}
	return nil
}

// Checker accumulates missing-field errors while converting raw records
// decoded into pointer fields. Err reports them as one domain.ErrMalformedInput.
type Checker struct {
	fields []domain.FieldError
}

func (c *Checker) Missing(path string) {
	c.fields = append(c.fields, domain.FieldError{Field: path, Message: "required"})
}

func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrMalformedInput, domain.NewValidationErrors(c.fields))
}

func (c *Checker) Str(v *string, path string) string {
	if v == nil {
		c.Missing(path)
		return ""
	}
	return *v
}

func (c *Checker) Num(v *int, path string) int {
	if v == nil {
		c.Missing(path)
		return 0
	}
	return *v
}

func (c *Checker) Flag(v *bool, path string) bool {
	if v == nil {
		c.Missing(path)
		return false
	}
	return *v
}

func (c *Checker) unit(u unitJSON, path string) Unit {
	out := Unit{
		ID:            c.Str(u.ID, path+".id"),
		Number:        c.Num(u.Number, path+".number"),
		Title:         c.Str(u.Title, path+".title"),
		IsUnlocked:    c.Flag(u.IsUnlocked, path+".isUnlocked"),
		RequiredStars: c.Num(u.RequiredStars, path+".requiredStars"),
	}
	if u.RequiredGems != nil {
		out.RequiredGems = *u.RequiredGems
	}
	if u.Sections == nil {
		c.Missing(path + ".sections")
		return out
	}
	out.Sections = make([]Section, 0, len(*u.Sections))
	for i, s := range *u.Sections {
		out.Sections = append(out.Sections, c.section(s, fmt.Sprintf("%s.sections[%d]", path, i)))
	}
	return out
}

func (c *Checker) section(s sectionJSON, path string) Section {
	out := Section{
		ID:         c.Str(s.ID, path+".id"),
		Name:       c.Str(s.Name, path+".name"),
		OrderIndex: c.Num(s.OrderIndex, path+".orderIndex"),
	}
	if s.Words == nil {
		c.Missing(path + ".words")
		return out
	}
	out.Words = make([]Word, 0, len(*s.Words))
	for i, w := range *s.Words {
		wp := fmt.Sprintf("%s.words[%d]", path, i)
		out.Words = append(out.Words, Word{
			Canonical:    c.Str(w.Canonical, wp+".canonical"),
			Chinese:      c.Str(w.Chinese, wp+".chinese"),
			PartOfSpeech: c.Str(w.PartOfSpeech, wp+".partOfSpeech"),
			GenderOrPos:  c.Str(w.GenderOrPos, wp+".genderOrPos"),
			Category:     c.Str(w.Category, wp+".category"),
			Elision:      c.Flag(w.Elision, wp+".elision"),
		})
	}
	return out
}
