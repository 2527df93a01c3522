package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLanguage_HintWins(t *testing.T) {
	// The hint is authoritative, whatever the text looks like.
	assert.Equal(t, "Klingon", ResolveLanguage("what is the meaning of life", "Klingon"))
	assert.Equal(t, "Spanish", ResolveLanguage("", "Spanish"))
	assert.Equal(t, "pt-BR", ResolveLanguage("why is the sky blue", "  pt-BR  "))
}

func TestResolveLanguage_Detection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "What is the best way to learn programming and why is it hard?", "English"},
		{"spanish", "¿Cómo puedo aprender a programar y qué lenguaje es el mejor para una principiante?", "Spanish"},
		{"french", "Pourquoi est-ce que le ciel est bleu et comment expliquer cela dans une classe?", "French"},
		{"german", "Warum ist der Himmel blau und wie kann man das ein Kind erklären, nicht zu kompliziert?", "German"},
		{"empty defaults to english", "", "English"},
		{"no markers defaults to english", "xyzzy plugh 42", "English"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLanguage(tt.text, ""))
		})
	}
}

func TestResolveLanguage_PunctuationStripped(t *testing.T) {
	// Markers still count when glued to punctuation.
	assert.Equal(t, "Spanish", ResolveLanguage("¿Qué? ¿Cómo? ¡Para una está el!", ""))
}
