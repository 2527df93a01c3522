package debate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSeriousTopic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"casual question", "What is the best pizza topping?", false},
		{"tech question", "How do goroutines differ from threads?", false},
		{"health english", "My mother just got a cancer diagnosis, what should we ask the doctor?", true},
		{"mental health", "I've been struggling with depression lately", true},
		{"legal", "My landlord filed for my eviction, what are my rights?", true},
		{"financial", "Should I declare bankruptcy or negotiate with creditors?", true},
		{"crisis", "A close friend passed away and I'm organizing the funeral", true},
		{"health spanish", "¿Qué debo hacer tras un diagnóstico de enfermedad grave?", true},
		{"legal german", "Wie funktioniert eine Insolvenz in Deutschland?", true},
		{"case insensitive", "DIVORCE proceedings and CUSTODY questions", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSeriousTopic(tt.text))
		})
	}
}

func TestIsSeriousTopic_Deterministic(t *testing.T) {
	text := "questions about a lawsuit and medication"
	first := IsSeriousTopic(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsSeriousTopic(text))
	}
}
