package factiverse

import "unicode"

// detectLang guesses the language tag for an API payload from the dominant
// script. The API only uses it to pick an evidence-retrieval index, so a
// coarse guess is enough; Latin-script text defaults to English.
func detectLang(text string) string {
	counts := map[string]int{}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			counts["ru"]++
		case unicode.Is(unicode.Arabic, r):
			counts["ar"]++
		case unicode.Is(unicode.Han, r):
			counts["zh"]++
		case unicode.Is(unicode.Devanagari, r):
			counts["hi"]++
		case unicode.IsLetter(r):
			counts["en"]++
		}
	}

	best := "en"
	for lang, n := range counts {
		if n > counts[best] {
			best = lang
		}
	}

	return best
}
