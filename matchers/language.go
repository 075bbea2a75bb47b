package matchers

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageFilter accepts text detected as one of a fixed set of languages.
type LanguageFilter struct {
	detector lingua.LanguageDetector
	allowed  map[lingua.Language]bool
}

// NewLanguageFilter accepts language names ("English") or ISO 639-1 codes
// ("en"), case-insensitively.
func NewLanguageFilter(names []string) (*LanguageFilter, error) {
	allowed := make(map[lingua.Language]bool, len(names))
	for _, name := range names {
		lang, ok := lookupLanguage(name)
		if !ok {
			return nil, fmt.Errorf("unknown language %q", name)
		}
		allowed[lang] = true
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("no languages given")
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &LanguageFilter{detector: detector, allowed: allowed}, nil
}

func lookupLanguage(name string) (lingua.Language, bool) {
	name = strings.TrimSpace(name)
	for _, lang := range lingua.AllLanguages() {
		if strings.EqualFold(lang.String(), name) || strings.EqualFold(lang.IsoCode639_1().String(), name) {
			return lang, true
		}
	}
	return lingua.Unknown, false
}

// Matches reports whether text is in an allowed language. Text the
// detector cannot place is rejected.
func (f *LanguageFilter) Matches(text string) bool {
	lang, ok := f.detector.DetectLanguageOf(text)
	if !ok {
		return false
	}
	return f.allowed[lang]
}
