package grading

import "strings"

// Features are the shallow text signals the heuristic scorer works from.
type Features struct {
	Tokens       int
	UniqueTokens int
	Commas       int // ASCII and Arabic commas
	Terminators  int // period, exclamation mark, Arabic question mark
	Lines        int
}

// Punct is the combined punctuation count.
func (f Features) Punct() int { return f.Commas + f.Terminators }

// ExtractFeatures derives Features from raw text. No normalization is
// applied: tokens are compared case- and diacritic-sensitively.
// Whitespace-only input yields the zero value; downstream ratio formulas
// guard their denominators with max(1, ...) so this is safe.
func ExtractFeatures(text string) Features {
	if strings.TrimSpace(text) == "" {
		return Features{}
	}
	tokens := strings.Fields(text)
	uniq := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		uniq[t] = struct{}{}
	}
	return Features{
		Tokens:       len(tokens),
		UniqueTokens: len(uniq),
		Commas:       strings.Count(text, "،") + strings.Count(text, ","),
		Terminators:  strings.Count(text, ".") + strings.Count(text, "؟") + strings.Count(text, "!"),
		Lines:        strings.Count(text, "\n") + 1,
	}
}
