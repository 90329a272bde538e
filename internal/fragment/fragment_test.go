package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Should trim, drop empties and index densely", func(t *testing.T) {
		s := New("doc", []string{"  a ", "", "   ", "b", "\tc\n"})
		require.Equal(t, 3, s.Len())
		assert.Equal(t, Fragment{Index: 1, Text: "b"}, s.At(1))
		assert.Equal(t, []string{"a", "b", "c"}, s.Texts())
		assert.Equal(t, "doc", s.Name())
	})

	t.Run("Should not share the texts slice with callers", func(t *testing.T) {
		s := New("doc", []string{"a"})
		texts := s.Texts()
		texts[0] = "mutated"
		assert.Equal(t, "a", s.Text(0))
	})

	t.Run("Should clamp windows and slices", func(t *testing.T) {
		s := New("doc", []string{"a", "b", "c"})
		assert.Len(t, s.Window(1, 10), 2)
		assert.Nil(t, s.Window(5, 2))
		assert.Nil(t, s.Window(0, 0))
		assert.Len(t, s.Slice(-1, 99), 3)
		assert.Nil(t, s.Slice(2, 1))
		assert.Equal(t, "", s.Text(-1))
		assert.Equal(t, "", s.Text(3))
	})

	t.Run("Should match case-insensitively", func(t *testing.T) {
		s := New("doc", []string{"DISPATCH TO: someone"})
		assert.True(t, s.ContainsFold("dispatch to:"))
		assert.False(t, s.ContainsFold("invoice"))
	})
}

func TestFromText(t *testing.T) {
	t.Run("Should split cleaned text into line fragments", func(t *testing.T) {
		s := FromText("doc", "Dispatch to: X\r\n\r\n  Quantity  Product Details \f2\n-----\n£3.00\t\tGBP")
		assert.Equal(t, []string{"Dispatch to: X", "Quantity  Product Details", "2", "£3.00  GBP"}, s.Texts())
	})

	t.Run("Should produce an empty stream for blank input", func(t *testing.T) {
		assert.True(t, FromText("doc", " \n\n ").Empty())
	})
}

func TestFromLayout(t *testing.T) {
	t.Run("Should split rows at wide gaps and keep two-space headers whole", func(t *testing.T) {
		text := "Quantity  Product Details          Unit price\n" +
			"  2       Medal Ribbon Pack of 6      £3.00\r\n" +
			"\f------------\nName\tValue"
		s := FromLayout("doc", text)
		assert.Equal(t, []string{
			"Quantity  Product Details", "Unit price",
			"2", "Medal Ribbon Pack of 6", "£3.00",
			"Name", "Value",
		}, s.Texts())
	})
}
