package importer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/heartmarshall/vocfr-backend/internal/app/importer/corpus"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// Secondary content files, looked up like the corpus.
const (
	TimestampsFile = "AudioTimestamps.json"
	GameModesFile  = "GameModes.json"
	StorybooksFile = "Storybooks.json"
)

// Timestamp segment defaults for records that omit them.
const (
	defaultSegmentQuality    = domain.AudioQualityNormal
	defaultSegmentConfidence = 0.9
)

type timestampsJSON struct {
	Files []struct {
		FileName string  `json:"fileName"`
		FilePath string  `json:"filePath"`
		Duration float64 `json:"duration"`
		Segments []struct {
			WordID     string   `json:"wordId"`
			FormType   string   `json:"formType"`
			StartTime  float64  `json:"startTime"`
			EndTime    float64  `json:"endTime"`
			Quality    string   `json:"quality"`
			Confidence *float64 `json:"confidence"`
		} `json:"segments"`
	} `json:"files"`
}

// ParseTimestamps decodes AudioTimestamps.json: shared recordings with one
// time range per word. Segments are returned unlinked (WordID set, Word nil)
// and already validated.
func ParseTimestamps(data []byte) ([]*domain.AudioFile, error) {
	var raw timestampsJSON
	if err := corpus.Decode(data, &raw); err != nil {
		return nil, err
	}

	files := make([]*domain.AudioFile, 0, len(raw.Files))
	for fi, rf := range raw.Files {
		if rf.FileName == "" {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedInput,
				domain.NewValidationError(fmt.Sprintf("files[%d].fileName", fi), "required"))
		}
		f := &domain.AudioFile{
			ID:       domain.AudioFileID(rf.FileName),
			FileName: rf.FileName,
			FilePath: rf.FilePath,
			Duration: rf.Duration,
		}

		for si, rs := range rf.Segments {
			kind, ok := domain.ParseFormKind(rs.FormType)
			if !ok {
				kind = domain.FormKind(rs.FormType)
			}
			quality := defaultSegmentQuality
			if rs.Quality != "" {
				quality = domain.AudioQuality(strings.ToUpper(rs.Quality))
			}
			confidence := defaultSegmentConfidence
			if rs.Confidence != nil {
				confidence = *rs.Confidence
			}

			seg := &domain.AudioSegment{
				ID:         domain.AudioSegmentID(rf.FileName, si),
				WordID:     rs.WordID,
				File:       f,
				StartTime:  rs.StartTime,
				EndTime:    rs.EndTime,
				FormKind:   kind,
				Quality:    quality,
				Confidence: confidence,
			}
			if err := seg.Validate(); err != nil {
				return nil, fmt.Errorf("%w: files[%d].segments[%d]: %w", domain.ErrMalformedInput, fi, si, err)
			}
			f.Segments = append(f.Segments, seg)
		}
		files = append(files, f)
	}
	return files, nil
}

type gameModeJSON struct {
	ID              *string `json:"id"`
	Name            *string `json:"name"`
	NameInChinese   *string `json:"nameInChinese"`
	DescriptionText *string `json:"descriptionText"`
	IsUnlocked      *bool   `json:"isUnlocked"`
	RequiredGems    *int    `json:"requiredGems"`
	OrderIndex      *int    `json:"orderIndex"`
	IconName        *string `json:"iconName"`
}

// ParseGameModes decodes GameModes.json, a flat list of mode descriptors.
// Every field is required.
func ParseGameModes(data []byte) ([]domain.GameMode, error) {
	var raw []gameModeJSON
	if err := corpus.Decode(data, &raw); err != nil {
		return nil, err
	}

	var c corpus.Checker
	modes := make([]domain.GameMode, 0, len(raw))
	for i, m := range raw {
		path := fmt.Sprintf("[%d]", i)
		modes = append(modes, domain.GameMode{
			ID:            c.Str(m.ID, path+".id"),
			Name:          c.Str(m.Name, path+".name"),
			NameInChinese: c.Str(m.NameInChinese, path+".nameInChinese"),
			Description:   c.Str(m.DescriptionText, path+".descriptionText"),
			IsUnlocked:    c.Flag(m.IsUnlocked, path+".isUnlocked"),
			RequiredGems:  c.Num(m.RequiredGems, path+".requiredGems"),
			OrderIndex:    c.Num(m.OrderIndex, path+".orderIndex"),
			IconName:      c.Str(m.IconName, path+".iconName"),
		})
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(modes))
	for i, m := range modes {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedInput,
				domain.NewValidationError(fmt.Sprintf("[%d].id", i), "required"))
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedInput,
				domain.NewValidationError(fmt.Sprintf("[%d].id", i), fmt.Sprintf("duplicate game mode %q", m.ID)))
		}
		seen[m.ID] = true
	}
	return modes, nil
}

type storyPageJSON struct {
	PageNumber     *int    `json:"pageNumber"`
	ContentFrench  *string `json:"contentFrench"`
	ContentChinese *string `json:"contentChinese"`
	ImageName      *string `json:"imageName"`
	AudioFileName  *string `json:"audioFileName"`
}

type storybookJSON struct {
	ID             *string          `json:"id"`
	Title          *string          `json:"title"`
	TitleInChinese *string          `json:"titleInChinese"`
	UniteID        *string          `json:"uniteId"`
	IsUnlocked     *bool            `json:"isUnlocked"`
	IsDefault      bool             `json:"isDefault"`
	RequiredGems   *int             `json:"requiredGems"`
	OrderIndex     *int             `json:"orderIndex"`
	CoverImageName *string          `json:"coverImageName"`
	Pages          *[]storyPageJSON `json:"pages"`
}

// ParseStorybooks decodes Storybooks.json. Both the wrapped form
// ({"storybooks": [...]}) and a bare array are accepted. Cover, page image
// and page audio names are optional, as is isDefault; every other field is
// required. Page numbers must be unique within a book.
func ParseStorybooks(data []byte) ([]domain.Storybook, error) {
	var raw []storybookJSON
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := corpus.Decode(data, &raw); err != nil {
			return nil, err
		}
	} else {
		var wrapped struct {
			Storybooks *[]storybookJSON `json:"storybooks"`
		}
		if err := corpus.Decode(data, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Storybooks == nil {
			var c corpus.Checker
			c.Missing("storybooks")
			return nil, c.Err()
		}
		raw = *wrapped.Storybooks
	}

	var c corpus.Checker
	books := make([]domain.Storybook, 0, len(raw))
	for bi, rb := range raw {
		path := fmt.Sprintf("storybooks[%d]", bi)
		b := domain.Storybook{
			ID:             c.Str(rb.ID, path+".id"),
			Title:          c.Str(rb.Title, path+".title"),
			TitleInChinese: c.Str(rb.TitleInChinese, path+".titleInChinese"),
			UnitID:         c.Str(rb.UniteID, path+".uniteId"),
			IsUnlocked:     c.Flag(rb.IsUnlocked, path+".isUnlocked"),
			IsDefault:      rb.IsDefault,
			RequiredGems:   c.Num(rb.RequiredGems, path+".requiredGems"),
			OrderIndex:     c.Num(rb.OrderIndex, path+".orderIndex"),
			CoverImageName: rb.CoverImageName,
		}
		if rb.Pages == nil {
			c.Missing(path + ".pages")
		} else {
			b.Pages = make([]domain.StoryPage, 0, len(*rb.Pages))
			for pi, rp := range *rb.Pages {
				pp := fmt.Sprintf("%s.pages[%d]", path, pi)
				b.Pages = append(b.Pages, domain.StoryPage{
					PageNumber:     c.Num(rp.PageNumber, pp+".pageNumber"),
					ContentFrench:  c.Str(rp.ContentFrench, pp+".contentFrench"),
					ContentChinese: c.Str(rp.ContentChinese, pp+".contentChinese"),
					ImageName:      rp.ImageName,
					AudioFileName:  rp.AudioFileName,
				})
			}
		}
		books = append(books, b)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	for bi, b := range books {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedInput,
				domain.NewValidationError(fmt.Sprintf("storybooks[%d].id", bi), "required"))
		}
		pages := make(map[int]bool, len(b.Pages))
		for pi, p := range b.Pages {
			if pages[p.PageNumber] {
				return nil, fmt.Errorf("%w: %w", domain.ErrMalformedInput,
					domain.NewValidationError(fmt.Sprintf("storybooks[%d].pages[%d].pageNumber", bi, pi),
						fmt.Sprintf("duplicate page %d", p.PageNumber)))
			}
			pages[p.PageNumber] = true
		}
	}
	return books, nil
}
