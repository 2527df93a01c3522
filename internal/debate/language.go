package debate

import "strings"

// DefaultLanguage is returned when detection is inconclusive.
const DefaultLanguage = "English"

// languageMarkers are small sets of high-frequency function words per
// language. Detection counts whole-word hits; it does not need to be
// authoritative because an explicit hint always wins.
var languageMarkers = []struct {
	name    string
	markers []string
}{
	{"English", []string{"the", "and", "what", "how", "why", "is", "are", "with", "that", "this"}},
	{"Spanish", []string{"el", "la", "los", "las", "qué", "cómo", "por", "para", "una", "está"}},
	{"French", []string{"le", "la", "les", "est", "que", "pourquoi", "comment", "avec", "une", "dans"}},
	{"German", []string{"der", "die", "das", "und", "ist", "warum", "wie", "mit", "ein", "nicht"}},
	{"Portuguese", []string{"o", "os", "uma", "que", "como", "por", "para", "não", "está", "você"}},
	{"Italian", []string{"il", "lo", "gli", "che", "come", "perché", "con", "una", "sono", "questo"}},
}

// ResolveLanguage determines the language providers must answer in. A
// non-empty hint is returned verbatim — the caller's instruction is
// authoritative. Otherwise the text is scored against the marker lists
// and the best match wins, defaulting to English on a tie or when
// nothing matches. The result is resolved once per debate and embedded
// into every system instruction; it is never re-derived per round.
func ResolveLanguage(text, hint string) string {
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return DefaultLanguage
	}
	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[strings.Trim(w, ".,!?;:\"'()¿¡")] = true
	}

	best := DefaultLanguage
	bestScore := 0
	for _, lang := range languageMarkers {
		score := 0
		for _, m := range lang.markers {
			if present[m] {
				score++
			}
		}
		// Strict inequality keeps English on ties: the list is ordered
		// with English first.
		if score > bestScore {
			best = lang.name
			bestScore = score
		}
	}
	return best
}
