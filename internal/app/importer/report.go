package importer

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/heartmarshall/vocfr-backend/internal/audio"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// topReused caps the reused-word list of a report.
const topReused = 10

// Report summarizes imported content. It is diagnostic only.
type Report struct {
	Counts domain.Counts
	Units  []UnitReport

	PartsOfSpeech map[domain.PartOfSpeech]int

	// WordsWithSegments counts words with at least one timestamp segment.
	WordsWithSegments int
	// WordsWithAudioFile counts words whose own audio file is in the inventory.
	WordsWithAudioFile int
	// AudioAssets is the number of audio files in the inventory.
	AudioAssets int

	// Reused lists words appearing in more than one section, most reused first.
	Reused []ReusedWord
}

type UnitReport struct {
	Number   int
	Title    string
	Words    int
	Sections []SectionReport
}

type SectionReport struct {
	ID    string
	Name  string
	Words int
}

type ReusedWord struct {
	Canonical string
	Sections  int
}

// BuildReport walks the graph and matches each word's audio candidates
// against inventory, a listing such as audio.Inventory returns. Nothing is
// probed on disk.
func BuildReport(g *domain.Graph, inventory []string) Report {
	r := Report{
		Counts:        g.Counts(),
		PartsOfSpeech: make(map[domain.PartOfSpeech]int),
		AudioAssets:   len(inventory),
	}

	for _, u := range g.Units {
		ur := UnitReport{Number: u.Number, Title: u.Title}
		for _, s := range u.Sections {
			ur.Words += len(s.SectionWords)
			ur.Sections = append(ur.Sections, SectionReport{ID: s.ID, Name: s.Name, Words: len(s.SectionWords)})
		}
		r.Units = append(r.Units, ur)
	}

	stems := audio.Stems(inventory)
	for _, w := range g.Words {
		r.PartsOfSpeech[w.PartOfSpeech]++
		if len(w.AudioSegments) > 0 {
			r.WordsWithSegments++
		}
		for c := range audio.Candidates(w, nil) {
			if _, ok := stems[c]; ok {
				r.WordsWithAudioFile++
				break
			}
		}
		if n := len(w.SectionWords); n > 1 {
			r.Reused = append(r.Reused, ReusedWord{Canonical: w.Canonical, Sections: n})
		}
	}

	slices.SortStableFunc(r.Reused, func(a, b ReusedWord) int {
		return cmp.Compare(b.Sections, a.Sections)
	})
	if len(r.Reused) > topReused {
		r.Reused = r.Reused[:topReused]
	}
	return r
}

// WriteText renders the report as aligned plain text.
func (r Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "units\t%d\n", r.Counts.Units)
	fmt.Fprintf(tw, "sections\t%d\n", r.Counts.Sections)
	fmt.Fprintf(tw, "words\t%d\n", r.Counts.Words)
	fmt.Fprintf(tw, "section words\t%d\n", r.Counts.SectionWords)
	fmt.Fprintf(tw, "forms\t%d\n", r.Counts.Forms)
	fmt.Fprintf(tw, "audio assets\t%d\n", r.AudioAssets)
	fmt.Fprintf(tw, "words with audio file\t%d\n", r.WordsWithAudioFile)
	fmt.Fprintf(tw, "words with segments\t%d\n", r.WordsWithSegments)

	fmt.Fprintln(tw, "\nunit\tsection\twords")
	for _, u := range r.Units {
		fmt.Fprintf(tw, "%d %s\t\t%d\n", u.Number, u.Title, u.Words)
		for _, s := range u.Sections {
			fmt.Fprintf(tw, "\t%s\t%d\n", s.Name, s.Words)
		}
	}

	fmt.Fprintln(tw, "\npart of speech\twords")
	pos := make([]domain.PartOfSpeech, 0, len(r.PartsOfSpeech))
	for p := range r.PartsOfSpeech {
		pos = append(pos, p)
	}
	slices.Sort(pos)
	for _, p := range pos {
		fmt.Fprintf(tw, "%s\t%d\n", p, r.PartsOfSpeech[p])
	}

	if len(r.Reused) > 0 {
		fmt.Fprintln(tw, "\nreused word\tsections")
		for _, rw := range r.Reused {
			fmt.Fprintf(tw, "%s\t%d\n", rw.Canonical, rw.Sections)
		}
	}
	return tw.Flush()
}

// IssueKind classifies a content problem found by Validate.
type IssueKind string

const (
	IssueMissingImage     IssueKind = "missing_image"
	IssueNounWithoutForms IssueKind = "noun_without_forms"
	IssueDuplicateWordID  IssueKind = "duplicate_word_id"
)

// Issue is one content problem. Issues never block an import.
type Issue struct {
	Kind   IssueKind
	WordID string
	Detail string
}

func (i Issue) String() string {
	if i.Detail == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.WordID)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Kind, i.WordID, i.Detail)
}

// Validate reports content problems in a graph. images may be nil, in which
// case image assets are not checked.
func Validate(g *domain.Graph, images audio.AssetStore) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(g.Words))

	for _, w := range g.Words {
		if seen[w.ID] {
			issues = append(issues, Issue{Kind: IssueDuplicateWordID, WordID: w.ID})
			continue
		}
		seen[w.ID] = true

		if w.PartOfSpeech == domain.PartOfSpeechNoun && len(w.Forms) == 0 {
			issues = append(issues, Issue{
				Kind:   IssueNounWithoutForms,
				WordID: w.ID,
				Detail: "gender qualifier is not masculine or feminine",
			})
		}
		if images != nil && w.ImageName != "" {
			if _, ok := images.Resolve(w.ImageName); !ok {
				issues = append(issues, Issue{Kind: IssueMissingImage, WordID: w.ID, Detail: w.ImageName})
			}
		}
	}
	return issues
}
