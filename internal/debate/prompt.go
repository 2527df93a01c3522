package debate

import (
	"fmt"
	"strings"

	"github.com/symposium-ai/symposium/internal/models"
)

// Round tone copy. The exact wording is product copy, kept in one place
// so it can be revised without touching the assembly logic below.
const (
	round1Instruction = "Give a short, direct answer to the question. Get to the point quickly."

	round2InstructionWitty = "This is round 2. You have read the other panelists' first answers below. " +
		"Refine your answer, calling out the other panelists BY NAME where you agree or disagree. " +
		"Be witty about it: a little name-dropping banter is welcome, substance is mandatory."
	round2InstructionSerious = "This is round 2. You have read the other panelists' first answers below. " +
		"Refine your answer, referencing the other panelists by name where you agree or disagree. " +
		"Keep a professional, supportive register throughout."

	round3InstructionPlayful = "This is the final round. Give a comprehensive answer of at most 400 words " +
		"that reconciles the disagreements in the discussion so far. You may open with one light remark, " +
		"then get substantive."
	round3InstructionSerious = "This is the final round. Give a comprehensive answer of at most 400 words " +
		"that reconciles the disagreements in the discussion so far. Keep a professional register throughout."

	seriousToneNote = "The topic appears to be sensitive (health, legal, financial, or personal crisis). " +
		"Be empathetic and avoid playfulness. Where appropriate, recommend consulting a qualified professional."

	refineNote = "Note explicitly where the panel agrees and where it disagrees, then refine your own position."
)

// BuildSystemPrompt composes the per-debate system instruction. The
// resolved language is embedded as a hard requirement.
func BuildSystemPrompt(provider models.ProviderID, language string, serious bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, one of several AI panelists answering the same question. ", provider.DisplayName())
	sb.WriteString("Answer as yourself; do not impersonate the other panelists.\n")
	fmt.Fprintf(&sb, "Respond strictly in this language: %s.\n", language)
	if serious {
		sb.WriteString(seriousToneNote)
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildPrompt composes the user-facing prompt for one provider in one
// round. Pure: identical inputs yield byte-identical output.
//
// For round > 1 the prior-round context block lists every other
// provider's earlier answers, labeled by name. The current provider's
// own prior text is withheld so it reacts to the others, not to itself.
func BuildPrompt(basePrompt string, round int, prior []TranscriptEntry, current models.ProviderID, serious bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "QUESTION: %s\n\n", basePrompt)

	switch {
	case round <= 1:
		sb.WriteString(round1Instruction)
	case round == 2:
		if serious {
			sb.WriteString(round2InstructionSerious)
		} else {
			sb.WriteString(round2InstructionWitty)
		}
	default:
		if serious {
			sb.WriteString(round3InstructionSerious)
		} else {
			sb.WriteString(round3InstructionPlayful)
		}
	}
	sb.WriteString("\n")

	if round > 1 && len(prior) > 0 {
		sb.WriteString("\nWHAT THE OTHER PANELISTS SAID:\n")
		sb.WriteString("-------------------\n")
		for _, e := range prior {
			fmt.Fprintf(&sb, "[%s - Round %d]:\n%s\n\n", e.Provider.DisplayName(), e.Round, e.Text)
		}
		sb.WriteString("-------------------\n")
		sb.WriteString(refineNote)
		sb.WriteString("\n")
	}

	sb.WriteString("\nYour answer:")
	return sb.String()
}
