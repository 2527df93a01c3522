package debate

import "strings"

// seriousKeywords covers health, legal/financial, and crisis vocabulary
// across the languages the service commonly sees. Matching is
// case-insensitive substring containment: cheap, deterministic, and
// intentionally biased toward false positives — the flag only softens
// tone, it never blocks or redirects a request.
var seriousKeywords = []string{
	// health (en)
	"cancer", "tumor", "diagnosis", "symptom", "disease", "illness",
	"depression", "anxiety", "suicide", "self-harm", "overdose",
	"chronic pain", "medication", "terminal",
	// health (es/fr/de/pt)
	"enfermedad", "síntoma", "depresión", "suicidio",
	"maladie", "symptôme", "dépression", "suicide",
	"krankheit", "symptom", "selbstmord",
	"doença", "sintoma", "depressão", "suicídio",
	// legal / financial (en)
	"lawsuit", "divorce", "custody", "bankruptcy", "foreclosure",
	"eviction", "debt collector", "fraud", "criminal charge", "arrested",
	// legal / financial (es/fr/de/pt)
	"demanda judicial", "divorcio", "bancarrota", "deuda",
	"procès", "faillite", "dette",
	"insolvenz", "scheidung", "schulden",
	"falência", "divórcio", "dívida",
	// crisis
	"emergency", "abuse", "violence", "assault", "trauma", "grief",
	"died", "passed away", "funeral",
	"emergencia", "violencia", "urgence", "violence", "notfall", "gewalt",
	"emergência", "violência", "luto",
}

// IsSeriousTopic reports whether the text touches health, legal,
// financial, or crisis territory. Pure and deterministic; there is no
// false-negative guarantee.
func IsSeriousTopic(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range seriousKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
