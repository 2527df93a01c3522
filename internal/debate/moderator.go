package debate

import (
	"fmt"
	"strings"
)

// ModeratorStyle selects the register of the final synthesis.
type ModeratorStyle string

const (
	StyleNeutral      ModeratorStyle = "neutral"
	StyleAnalytical   ModeratorStyle = "analytical"
	StyleEducational  ModeratorStyle = "educational"
	StyleCreative     ModeratorStyle = "creative"
	StyleQuickSummary ModeratorStyle = "quick-summary"
)

// AllModeratorStyles lists the supported styles in stable order.
func AllModeratorStyles() []ModeratorStyle {
	return []ModeratorStyle{
		StyleNeutral,
		StyleAnalytical,
		StyleEducational,
		StyleCreative,
		StyleQuickSummary,
	}
}

// ParseModeratorStyle validates a wire-format style name. Empty input
// means neutral.
func ParseModeratorStyle(s string) (ModeratorStyle, error) {
	switch ModeratorStyle(s) {
	case "":
		return StyleNeutral, nil
	case StyleNeutral, StyleAnalytical, StyleEducational, StyleCreative, StyleQuickSummary:
		return ModeratorStyle(s), nil
	case "quick_summary": // tolerated alias
		return StyleQuickSummary, nil
	default:
		return "", fmt.Errorf("unknown moderator style %q", s)
	}
}

func styleGuidance(style ModeratorStyle) string {
	switch style {
	case StyleAnalytical:
		return "Compare and contrast the key points of the panelists. Make the structure of agreement and disagreement explicit."
	case StyleEducational:
		return "Explain the panel's conclusions as if teaching someone new to the subject. Define terms the panelists used."
	case StyleCreative:
		return "Synthesize the panel's answers with flair: vivid language and a memorable framing are welcome, accuracy is required."
	case StyleQuickSummary:
		return "Write a terse executive summary. A few sentences, no preamble."
	default: // StyleNeutral
		return "Write a balanced, even-handed synthesis of the panel's answers."
	}
}

// BuildModeratorPrompt composes the synthesis prompt. Every transcript
// entry is listed as [provider Rn], failed calls included, so the
// moderator can account for unavailable panelists.
func BuildModeratorPrompt(question string, transcript []TranscriptEntry, style ModeratorStyle, serious bool) string {
	var sb strings.Builder

	sb.WriteString("You are the moderator of a panel of AI models that debated the question below over one or more rounds.\n")
	fmt.Fprintf(&sb, "QUESTION: %s\n\n", question)

	sb.WriteString("FULL TRANSCRIPT:\n")
	for _, e := range transcript {
		fmt.Fprintf(&sb, "[%s R%d] %s\n\n", e.Provider.DisplayName(), e.Round, e.Text)
	}

	sb.WriteString("Write the single final answer for the user, reconciling the panelists' perspectives. ")
	sb.WriteString(styleGuidance(style))
	sb.WriteString("\n")
	if serious {
		sb.WriteString(seriousToneNote)
		sb.WriteString("\n")
	}
	sb.WriteString("\nYour final answer:")
	return sb.String()
}

// BuildModeratorSystemPrompt composes the moderator's system
// instruction, embedding the same hard language requirement as the
// panelists received.
func BuildModeratorSystemPrompt(language string) string {
	return fmt.Sprintf("You are an impartial moderator synthesizing a multi-model debate into one final answer.\nRespond strictly in this language: %s.\n", language)
}
