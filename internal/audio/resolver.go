// Package audio resolves playable audio for a word through an ordered,
// short-circuiting list of lookup strategies.
package audio

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// Strategy names the lookup that produced a Reference.
type Strategy string

const (
	StrategyIndependentFile Strategy = "independent_file"
	StrategySegment         Strategy = "segment"
)

// Reference points at playable audio. For StrategySegment, Start and End
// bound the word inside a shared recording.
type Reference struct {
	Strategy  Strategy
	Path      string
	Candidate string
	Start     float64
	End       float64
}

// IsSegment reports whether the reference covers only part of its file.
func (r Reference) IsSegment() bool { return r.Strategy == StrategySegment }

// WordResolver is implemented by Resolver and CachingResolver.
type WordResolver interface {
	Resolve(word *domain.Word, section *domain.Section) (Reference, bool)
}

type strategy func(word *domain.Word, section *domain.Section) (Reference, bool)

// Resolver is stateless and safe for concurrent use. It never returns an
// error: a missing asset is reported as (Reference{}, false).
type Resolver struct {
	log        *slog.Logger
	store      AssetStore
	strategies []strategy
}

// NewResolver creates a Resolver backed by store.
func NewResolver(log *slog.Logger, store AssetStore) *Resolver {
	r := &Resolver{log: log, store: store}
	r.strategies = []strategy{r.independentFile, r.timestampSegment}
	return r
}

// Resolve tries each strategy in order and returns the first hit. section is
// the context the word is shown in; nil means the word's first section.
func (r *Resolver) Resolve(word *domain.Word, section *domain.Section) (Reference, bool) {
	if word == nil {
		return Reference{}, false
	}
	for _, s := range r.strategies {
		if ref, ok := s(word, section); ok {
			r.log.Debug("audio resolved",
				slog.String("word", word.ID),
				slog.String("strategy", string(ref.Strategy)),
				slog.String("path", ref.Path),
			)
			return ref, true
		}
	}
	r.log.Debug("audio not found", slog.String("word", word.ID))
	return Reference{}, false
}

func (r *Resolver) independentFile(word *domain.Word, section *domain.Section) (Reference, bool) {
	for c := range Candidates(word, section) {
		if a, ok := r.store.Resolve(c); ok {
			return Reference{Strategy: StrategyIndependentFile, Path: a.Path, Candidate: c}, true
		}
	}
	return Reference{}, false
}

func (r *Resolver) timestampSegment(word *domain.Word, _ *domain.Section) (Reference, bool) {
	for _, seg := range word.AudioSegments {
		if seg == nil || seg.File == nil {
			continue
		}
		return Reference{
			Strategy: StrategySegment,
			Path:     seg.File.FileName,
			Start:    seg.StartTime,
			End:      seg.EndTime,
		}, true
	}
	return Reference{}, false
}

// Candidates yields the extension-less paths probed for a word's own audio
// file, most specific first. The sequence is lazy: a consumer that stops at
// the first hit never builds the remaining names.
//
// With a context section whose unit is known (or, lacking one, the word's
// first section) the order is:
//
//	u{unit}s{section}-{name}
//	Audio/Words/Unite{unit}/Section{section}/{name}
//	Audio/{name}
//	{name}
//
// Without a resolvable unit only {name} is yielded. {section} is the
// section's order index and {name} is domain.NormalizeAudioName(canonical).
func Candidates(word *domain.Word, section *domain.Section) iter.Seq[string] {
	return func(yield func(string) bool) {
		name := domain.NormalizeAudioName(word.Canonical)
		if name == "" {
			return
		}

		target := section
		if target == nil {
			target = word.FirstSection()
		}
		if target == nil || target.Unit == nil {
			yield(name)
			return
		}

		unit, idx := target.Unit.Number, target.OrderIndex
		builders := []func() string{
			func() string { return fmt.Sprintf("u%ds%d-%s", unit, idx, name) },
			func() string { return fmt.Sprintf("Audio/Words/Unite%d/Section%d/%s", unit, idx, name) },
			func() string { return "Audio/" + name },
			func() string { return name },
		}
		for _, build := range builders {
			if !yield(build()) {
				return
			}
		}
	}
}
