package debate

import "github.com/symposium-ai/symposium/internal/models"

// TranscriptEntry is one provider's full answer for one round,
// immutable once appended. Failed provider calls still produce an
// entry: its text is the labeled error message, so later rounds and
// the moderator see that the provider was unavailable rather than
// silently missing.
type TranscriptEntry struct {
	Provider models.ProviderID `json:"provider"`
	Round    int               `json:"round"`
	Text     string            `json:"text"`
	Failed   bool              `json:"failed,omitempty"`
}

// Transcript is the ordered history of all providers' answers across
// completed rounds for one debate. It is owned by the orchestrator run
// that created it; all appends happen on round-settlement boundaries
// from that single goroutine, so no locking is needed.
type Transcript struct {
	entries []TranscriptEntry
}

// Append adds an entry. Entries arrive in round order, panel order
// within a round.
func (t *Transcript) Append(e TranscriptEntry) {
	t.entries = append(t.entries, e)
}

// Entries returns the full transcript in append order.
func (t *Transcript) Entries() []TranscriptEntry {
	return t.entries
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// ContextFor returns all entries from rounds before the given round,
// excluding the named provider's own entries. This is the context block
// a provider sees when refining its answer: it reacts to the others,
// never to itself.
func (t *Transcript) ContextFor(provider models.ProviderID, round int) []TranscriptEntry {
	var out []TranscriptEntry
	for _, e := range t.entries {
		if e.Round >= round {
			continue
		}
		if e.Provider == provider {
			continue
		}
		out = append(out, e)
	}
	return out
}
