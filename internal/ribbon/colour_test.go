package ribbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColour(t *testing.T) {
	t.Run("Should canonicalize equivalent phrasings to one key", func(t *testing.T) {
		assert.Equal(t, "red-white", NormalizeColour("Red/White"))
		assert.Equal(t, "red-white", NormalizeColour("Red and White"))
		assert.Equal(t, "red-white", NormalizeColour("RedWhite"))
	})

	t.Run("Should trim and lowercase", func(t *testing.T) {
		assert.Equal(t, "gold", NormalizeColour("  Gold  "))
		assert.Equal(t, "navy blue", NormalizeColour("Navy Blue"))
	})

	t.Run("Should split multiple camel-case words", func(t *testing.T) {
		assert.Equal(t, "royal-blue-gold", NormalizeColour("RoyalBlueGold"))
	})

	t.Run("Should treat the conjunction case-insensitively", func(t *testing.T) {
		assert.Equal(t, "red-white", NormalizeColour("Red AND White"))
	})

	t.Run("Should be idempotent", func(t *testing.T) {
		for _, in := range []string{
			"Red/White", "Red and White", "RedWhite", "  Gold  ", "Red AND And White",
			"x  and  and y", "Lime Green", "a and and b", "", "   ", "ÉcruBlanc", "Red / White",
		} {
			once := NormalizeColour(in)
			assert.Equal(t, once, NormalizeColour(once), "input %q", in)
		}
	})
}

func FuzzNormalizeColourIdempotent(f *testing.F) {
	for _, seed := range []string{"Red/White", "Red and White", "RedWhite", "  Gold  ", "NAVY and Sky", "a AND and b"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		once := NormalizeColour(in)
		if twice := NormalizeColour(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	})
}
