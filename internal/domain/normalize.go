package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks after NFKD decomposition
// ("fenêtre" → "fenetre"). Characters without a decomposition, such as "œ",
// are left as they are.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeAudioName converts a canonical spelling into the file stem used by
// per-word audio assets:
//   - diacritics stripped
//   - lowercased
//   - spaces replaced with hyphens
//   - everything outside [a-z0-9-] dropped
//
// "salle de classe" → "salle-de-classe", "Éponge" → "eponge".
func NormalizeAudioName(text string) string {
	s := strings.ToLower(StripDiacritics(text))
	s = strings.ReplaceAll(s, " ", "-")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ImageAssetName returns the image asset name for a canonical spelling:
// diacritics stripped, spaces, apostrophes and hyphens turned into underscores,
// "_image" appended. Case is preserved.
func ImageAssetName(canonical string) string {
	s := StripDiacritics(canonical)
	s = strings.NewReplacer(" ", "_", "'", "_", "’", "_", "-", "_").Replace(s)
	return s + "_image"
}
