// Package forms derives the article and number renderings of French nouns.
package forms

import (
	"strings"

	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// Generate returns the forms of a noun in a fixed order: indefinite singular
// (main form), definite singular, indefinite plural, definite plural.
//
// Only nouns whose gender qualifier is exactly "masculine" or "feminine" get
// forms; every other combination yields nil. This is not an error.
//
// The returned forms carry Kind, French, ArticleOnly, Gender, Number,
// IsMainForm and Position. Identifiers are assigned by the caller.
func Generate(canonical, genderQualifier string, pos domain.PartOfSpeech, elision bool) []domain.WordForm {
	if pos != domain.PartOfSpeechNoun {
		return nil
	}
	gender, ok := domain.ParseGender(genderQualifier)
	if !ok {
		return nil
	}

	plural := Pluralize(canonical)

	var indefinite, definite string
	switch {
	case elision:
		indefinite, definite = "un", "l'"
	case gender == domain.GenderMasculine:
		indefinite, definite = "un", "le"
	default:
		indefinite, definite = "une", "la"
	}

	definiteFrench := definite + " " + canonical
	if elision {
		definiteFrench = definite + canonical
	}

	out := []domain.WordForm{
		form(domain.FormKindIndefiniteArticle, indefinite+" "+canonical, indefinite, gender, domain.NumberSingular),
		form(domain.FormKindDefiniteArticle, definiteFrench, definite, gender, domain.NumberSingular),
		form(domain.FormKindIndefiniteArticle, "des "+plural, "des", gender, domain.NumberPlural),
		form(domain.FormKindDefiniteArticle, "les "+plural, "les", gender, domain.NumberPlural),
	}
	out[0].IsMainForm = true
	for i := range out {
		out[i].Position = i
	}
	return out
}

// Pluralize returns the regular plural of a noun: unchanged when it already
// ends in s, x or z, otherwise with an "s" appended.
func Pluralize(noun string) string {
	if strings.HasSuffix(noun, "s") || strings.HasSuffix(noun, "x") || strings.HasSuffix(noun, "z") {
		return noun
	}
	return noun + "s"
}

func form(kind domain.FormKind, french, article string, g domain.Gender, n domain.GrammaticalNumber) domain.WordForm {
	return domain.WordForm{
		Kind:        kind,
		French:      french,
		ArticleOnly: &article,
		Gender:      &g,
		Number:      &n,
	}
}
