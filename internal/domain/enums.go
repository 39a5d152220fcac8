package domain

import "strings"

// PartOfSpeech represents the grammatical category of a word.
type PartOfSpeech string

const (
	PartOfSpeechNoun        PartOfSpeech = "NOUN"
	PartOfSpeechVerb        PartOfSpeech = "VERB"
	PartOfSpeechAdjective   PartOfSpeech = "ADJECTIVE"
	PartOfSpeechNumber      PartOfSpeech = "NUMBER"
	PartOfSpeechPronoun     PartOfSpeech = "PRONOUN"
	PartOfSpeechPreposition PartOfSpeech = "PREPOSITION"
	PartOfSpeechOther       PartOfSpeech = "OTHER"
)

func (p PartOfSpeech) String() string { return string(p) }

func (p PartOfSpeech) IsValid() bool {
	switch p {
	case PartOfSpeechNoun, PartOfSpeechVerb, PartOfSpeechAdjective, PartOfSpeechNumber,
		PartOfSpeechPronoun, PartOfSpeechPreposition, PartOfSpeechOther:
		return true
	}
	return false
}

// ParsePartOfSpeech maps a corpus label ("noun", "Verb", ...) to a PartOfSpeech.
// Matching is case-insensitive; unknown labels map to PartOfSpeechOther.
func ParsePartOfSpeech(label string) PartOfSpeech {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "noun":
		return PartOfSpeechNoun
	case "verb":
		return PartOfSpeechVerb
	case "adjective":
		return PartOfSpeechAdjective
	case "number":
		return PartOfSpeechNumber
	case "pronoun":
		return PartOfSpeechPronoun
	case "preposition":
		return PartOfSpeechPreposition
	default:
		return PartOfSpeechOther
	}
}

// Gender is the grammatical gender of a French noun.
type Gender string

const (
	GenderMasculine Gender = "MASCULINE"
	GenderFeminine  Gender = "FEMININE"
)

func (g Gender) String() string { return string(g) }

func (g Gender) IsValid() bool {
	return g == GenderMasculine || g == GenderFeminine
}

// ParseGender recognizes exactly "masculine" and "feminine". Any other
// qualifier (blank, a part-of-speech hint, a typo) reports false.
func ParseGender(qualifier string) (Gender, bool) {
	switch qualifier {
	case "masculine":
		return GenderMasculine, true
	case "feminine":
		return GenderFeminine, true
	}
	return "", false
}

// GrammaticalNumber is singular or plural.
type GrammaticalNumber string

const (
	NumberSingular GrammaticalNumber = "SINGULAR"
	NumberPlural   GrammaticalNumber = "PLURAL"
)

func (n GrammaticalNumber) String() string { return string(n) }

func (n GrammaticalNumber) IsValid() bool {
	return n == NumberSingular || n == NumberPlural
}

// FormKind identifies how a WordForm is rendered.
type FormKind string

const (
	FormKindIndefiniteArticle FormKind = "INDEFINITE_ARTICLE"
	FormKindDefiniteArticle   FormKind = "DEFINITE_ARTICLE"
	FormKindElision           FormKind = "ELISION"
	FormKindBaseForm          FormKind = "BASE_FORM"
)

func (k FormKind) String() string { return string(k) }

func (k FormKind) IsValid() bool {
	switch k {
	case FormKindIndefiniteArticle, FormKindDefiniteArticle, FormKindElision, FormKindBaseForm:
		return true
	}
	return false
}

// ParseFormKind accepts both the stored values and the camelCase labels used in
// timestamp files ("indefiniteArticle", "withElision", ...).
func ParseFormKind(s string) (FormKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indefinite_article", "indefinitearticle":
		return FormKindIndefiniteArticle, true
	case "definite_article", "definitearticle":
		return FormKindDefiniteArticle, true
	case "elision", "withelision", "with_elision":
		return FormKindElision, true
	case "base_form", "baseform":
		return FormKindBaseForm, true
	}
	return "", false
}

// AudioQuality tags the recording quality of an AudioSegment.
type AudioQuality string

const (
	AudioQualityHigh   AudioQuality = "HIGH"
	AudioQualityNormal AudioQuality = "NORMAL"
	AudioQualityLow    AudioQuality = "LOW"
)

func (q AudioQuality) String() string { return string(q) }

func (q AudioQuality) IsValid() bool {
	switch q {
	case AudioQualityHigh, AudioQualityNormal, AudioQualityLow:
		return true
	}
	return false
}
