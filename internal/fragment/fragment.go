// Package fragment holds the linearized form of a document: an ordered,
// immutable sequence of trimmed, non-empty text fragments. It is the input
// contract shared by every extractor.
package fragment

import "strings"

// Fragment is one unit of linearized document text at a stable position.
type Fragment struct {
	Index int
	Text  string
}

// Stream is an immutable ordered sequence of fragments belonging to one document.
type Stream struct {
	name  string
	items []Fragment
}

// New builds a Stream from raw texts. Each text is trimmed and empty texts are
// dropped; indexes are assigned after filtering so they are dense.
func New(name string, texts []string) Stream {
	items := make([]Fragment, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		items = append(items, Fragment{Index: len(items), Text: t})
	}
	return Stream{name: name, items: items}
}

// FromText cleans a block of extracted text and splits it into one fragment per line.
func FromText(name, text string) Stream {
	return New(name, strings.Split(Clean(text), "\n"))
}

// Name is the document name the stream was built from (file name or caller label).
func (s Stream) Name() string { return s.name }

// Len returns the number of fragments.
func (s Stream) Len() int { return len(s.items) }

// Empty reports whether the stream has no fragments.
func (s Stream) Empty() bool { return len(s.items) == 0 }

// At returns the fragment at position i. It panics when i is out of range, like a slice.
func (s Stream) At(i int) Fragment { return s.items[i] }

// Text returns the text at position i, or "" when i is out of range.
func (s Stream) Text(i int) string {
	if i < 0 || i >= len(s.items) {
		return ""
	}
	return s.items[i].Text
}

// Texts returns a copy of all fragment texts in order.
func (s Stream) Texts() []string {
	out := make([]string, len(s.items))
	for i, f := range s.items {
		out[i] = f.Text
	}
	return out
}

// Window returns at most n fragments starting at start. The returned slice
// aliases the stream and must not be modified.
func (s Stream) Window(start, n int) []Fragment {
	if start < 0 {
		start = 0
	}
	if start >= len(s.items) || n <= 0 {
		return nil
	}
	end := start + n
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[start:end:end]
}

// Slice returns the fragments in [from, to), clamped to the stream bounds.
func (s Stream) Slice(from, to int) []Fragment {
	if from < 0 {
		from = 0
	}
	if to > len(s.items) {
		to = len(s.items)
	}
	if from >= to {
		return nil
	}
	return s.items[from:to:to]
}

// ContainsFold reports whether any fragment contains substr, ignoring case.
func (s Stream) ContainsFold(substr string) bool {
	needle := strings.ToLower(substr)
	for _, f := range s.items {
		if strings.Contains(strings.ToLower(f.Text), needle) {
			return true
		}
	}
	return false
}
