package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Lang
	}{
		{"", French},
		{"fr", French},
		{"fr-FR", French},
		{"en", English},
		{"EN", English},
		{"en-US", English},
		{"en-US,en;q=0.9,fr;q=0.8", English},
		{"fr-MA,fr;q=0.9", French},
		{"es", French},
		{"  en-GB  ", English},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.raw), "Parse(%q)", tt.raw)
	}
}

func TestPick(t *testing.T) {
	assert.Equal(t, "Salle 1", Pick(French, "Salle 1", "Room 1"))
	assert.Equal(t, "Room 1", Pick(English, "Salle 1", "Room 1"))

	// Fall back to the non-empty member of the pair.
	assert.Equal(t, "Salle 1", Pick(English, "Salle 1", ""))
	assert.Equal(t, "Room 1", Pick(French, "", "Room 1"))
	assert.Equal(t, "", Pick(English, "", ""))
}

func TestPickIsIdempotent(t *testing.T) {
	first := Pick(English, "Cardiologie", "Cardiology")
	second := Pick(English, "Cardiologie", "Cardiology")
	assert.Equal(t, first, second)
}
