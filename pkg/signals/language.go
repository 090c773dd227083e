package signals

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// minLanguageChars is the shortest text worth running detection on.
const minLanguageChars = 40

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English, lingua.French, lingua.German, lingua.Spanish,
				lingua.Portuguese, lingua.Italian, lingua.Dutch, lingua.Swedish,
				lingua.Polish, lingua.Russian, lingua.Japanese, lingua.Chinese,
				lingua.Korean,
			).
			Build()
	})
	return detector
}

// DetectLanguage returns the lowercase ISO 639-1 code of the dominant language.
func DetectLanguage(text string) (string, bool) {
	if len(text) < minLanguageChars {
		return "", false
	}
	lang, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
