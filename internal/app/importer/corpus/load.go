package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// File names of the two supported corpus layouts.
const (
	VocabularyFile = "vocabulary.json"
	MetadataFile   = "metadata.json"
)

// Metadata describes the split layout: one metadata.json plus one
// Unite{N}.json per available unit.
type Metadata struct {
	Version         string `json:"version"`
	LastUpdated     string `json:"lastUpdated"`
	Description     string `json:"description"`
	TotalUnites     int    `json:"totalUnites"`
	AvailableUnites []int  `json:"availableUnites"`
	DataFormat      string `json:"dataFormat"`
	AudioFormat     string `json:"audioFormat"`
}

// Loader locates corpus files in an fs.FS. Each name is looked up in every
// search directory in order; "." is the root.
type Loader struct {
	fsys       fs.FS
	searchDirs []string
	log        *slog.Logger
}

// NewLoader creates a Loader. With no search directories only the root is used.
func NewLoader(log *slog.Logger, fsys fs.FS, searchDirs ...string) *Loader {
	if len(searchDirs) == 0 {
		searchDirs = []string{"."}
	}
	return &Loader{fsys: fsys, searchDirs: searchDirs, log: log}
}

// ReadFile returns the contents of the first match for name across the search
// directories, and the path it was found at. A miss in every directory
// returns domain.ErrFileNotFound.
func (l *Loader) ReadFile(name string) ([]byte, string, error) {
	for _, dir := range l.searchDirs {
		p := path.Join(dir, name)
		data, err := fs.ReadFile(l.fsys, p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, p, fmt.Errorf("read %s: %w", p, err)
		}
	}
	return nil, "", fmt.Errorf("%w: %s", domain.ErrFileNotFound, name)
}

// Load reads the corpus, preferring a single vocabulary.json and falling back
// to the split metadata.json + Unite{N}.json layout. Units of the split layout
// are read in ascending unit number; a listed unit whose file is missing is
// skipped with a warning. Neither layout present returns domain.ErrFileNotFound.
func (l *Loader) Load() (*Document, error) {
	data, p, err := l.ReadFile(VocabularyFile)
	switch {
	case err == nil:
		l.log.Debug("corpus: single document", slog.String("path", p))
		doc, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		return doc, nil
	case !errors.Is(err, domain.ErrFileNotFound):
		return nil, err
	}

	data, p, err = l.ReadFile(MetadataFile)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: neither %s nor %s found", domain.ErrFileNotFound, VocabularyFile, MetadataFile)
		}
		return nil, err
	}

	var meta Metadata
	if err := Decode(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	l.log.Debug("corpus: split layout",
		slog.String("path", p),
		slog.String("version", meta.Version),
		slog.Int("available_units", len(meta.AvailableUnites)),
	)

	doc := &Document{
		Version:     meta.Version,
		LastUpdated: meta.LastUpdated,
		Description: meta.Description,
	}

	numbers := slices.Clone(meta.AvailableUnites)
	slices.Sort(numbers)
	for _, n := range slices.Compact(numbers) {
		name := fmt.Sprintf("Unite%d.json", n)
		data, p, err := l.ReadFile(name)
		if errors.Is(err, domain.ErrFileNotFound) {
			l.log.Warn("corpus: unit file missing, skipping", slog.String("file", name))
			continue
		}
		if err != nil {
			return nil, err
		}
		u, err := ParseUnit(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		doc.Units = append(doc.Units, u)
	}

	return doc, nil
}
