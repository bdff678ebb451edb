package norm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Normalize
// ============================================================================

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"ascii lowercase", "Krishna", "krishna"},
		{"iast diacritics", "śiva", "siva"},
		{"iast long vowels", "ātmā", "atma"},
		{"precomposed latin", "café", "cafe"},
		{"en dash", "self–knowledge", "self-knowledge"},
		{"em dash", "self—knowledge", "self-knowledge"},
		{"mixed", "Yogaś citta-vṛtti", "yogas citta-vrtti"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Śaṅkarācārya", "jñāna–mārga", "already plain"}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalizeKeepsDistinctSpellings(t *testing.T) {
	// "śiva" folds to "siva"; "shiva" is a different spelling and must
	// stay distinct.
	assert.Equal(t, "siva", Normalize("śiva"))
	assert.NotEqual(t, Normalize("śiva"), Normalize("shiva"))
}

// ============================================================================
// Aligned
// ============================================================================

func TestAlignedNormMatchesNormalize(t *testing.T) {
	inputs := []string{"", "Kṛṣṇa", "Self–Knowledge", "plain text"}
	for _, s := range inputs {
		a := NewAligned(s)
		assert.Equal(t, Normalize(s), a.Norm)
	}
}

func TestAlignedOriginalAsciiRange(t *testing.T) {
	// Given text where normalization does not change byte positions
	a := NewAligned("om tat sat")

	// When a normalized range is projected back
	start, end := a.Original(3, 6)

	// Then the original range covers the same bytes
	assert.Equal(t, 3, start)
	assert.Equal(t, 6, end)
	assert.Equal(t, "tat", "om tat sat"[start:end])
}

func TestAlignedOriginalDiacriticRange(t *testing.T) {
	// Given original text whose diacritics occupy extra bytes
	orig := "oṁ namaḥ śivāya"
	a := NewAligned(orig)

	// When the match for "sivaya" is found on normalized text
	idx := strings.Index(a.Norm, "sivaya")
	require.GreaterOrEqual(t, idx, 0)
	start, end := a.Original(idx, idx+len("sivaya"))

	// Then the projected range covers "śivāya" in the original
	assert.Equal(t, "śivāya", orig[start:end])
}

func TestAlignedOriginalBounds(t *testing.T) {
	a := NewAligned("abc")

	start, end := a.Original(0, 0)
	assert.Zero(t, start)
	assert.Zero(t, end)

	start, end = a.Original(-1, 2)
	assert.Zero(t, start)
	assert.Zero(t, end)

	start, end = a.Original(9, 12)
	assert.Zero(t, start)
	assert.Zero(t, end)

	// End past the buffer clamps instead of failing.
	start, end = a.Original(1, 99)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, end)
}
