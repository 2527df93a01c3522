package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-ai/symposium/internal/models"
)

func TestParseModeratorStyle(t *testing.T) {
	tests := []struct {
		input   string
		want    ModeratorStyle
		wantErr bool
	}{
		{"", StyleNeutral, false},
		{"neutral", StyleNeutral, false},
		{"analytical", StyleAnalytical, false},
		{"educational", StyleEducational, false},
		{"creative", StyleCreative, false},
		{"quick-summary", StyleQuickSummary, false},
		{"quick_summary", StyleQuickSummary, false},
		{"sarcastic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModeratorStyle(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildModeratorPrompt(t *testing.T) {
	transcript := []TranscriptEntry{
		{Provider: models.ProviderOpenAI, Round: 1, Text: "first take"},
		{Provider: models.ProviderAnthropic, Round: 1, Text: "second take"},
		{Provider: models.ProviderOpenAI, Round: 2, Text: "refined take"},
	}

	p := BuildModeratorPrompt("the question", transcript, StyleNeutral, false)
	assert.Contains(t, p, "QUESTION: the question")
	assert.Contains(t, p, "[OpenAI R1] first take")
	assert.Contains(t, p, "[Claude R1] second take")
	assert.Contains(t, p, "[OpenAI R2] refined take")
	assert.Contains(t, p, "balanced, even-handed")
	assert.NotContains(t, p, "sensitive")
}

func TestBuildModeratorPrompt_StylesDiffer(t *testing.T) {
	transcript := []TranscriptEntry{{Provider: models.ProviderOpenAI, Round: 1, Text: "x"}}

	seen := map[string]bool{}
	for _, style := range AllModeratorStyles() {
		p := BuildModeratorPrompt("q", transcript, style, false)
		assert.False(t, seen[p], "style %s produced a duplicate prompt", style)
		seen[p] = true
	}
}

func TestBuildModeratorPrompt_SeriousTone(t *testing.T) {
	transcript := []TranscriptEntry{{Provider: models.ProviderOpenAI, Round: 1, Text: "x"}}
	p := BuildModeratorPrompt("q", transcript, StyleCreative, true)
	assert.Contains(t, p, "sensitive")
}

func TestBuildModeratorSystemPrompt(t *testing.T) {
	sys := BuildModeratorSystemPrompt("German")
	assert.Contains(t, sys, "impartial moderator")
	assert.Contains(t, sys, "Respond strictly in this language: German.")
}
