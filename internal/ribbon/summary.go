package ribbon

import "sort"

// Summary maps a normalized colour to its total quantity.
type Summary map[string]int

// Summarize folds line items into per-colour totals. Zero-quantity items
// still register their colour with a total of 0.
func Summarize(items []LineItem) Summary {
	s := make(Summary, len(items))
	for _, it := range items {
		s[it.Colour] += it.Quantity
	}
	return s
}

// Merge returns a new summary holding the per-colour sum of s and other.
// Neither input is modified.
func (s Summary) Merge(other Summary) Summary {
	out := make(Summary, len(s)+len(other))
	for c, q := range s {
		out[c] += q
	}
	for c, q := range other {
		out[c] += q
	}
	return out
}

// MergeSummaries folds any number of partial summaries into one.
func MergeSummaries(parts ...Summary) Summary {
	out := Summary{}
	for _, p := range parts {
		out = out.Merge(p)
	}
	return out
}

// Colours returns the colour keys in ascending order.
func (s Summary) Colours() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Total is the sum over all colours.
func (s Summary) Total() int {
	n := 0
	for _, q := range s {
		n += q
	}
	return n
}

// Row is one (colour, quantity) line of a summary in display order.
type Row struct {
	Colour   string `json:"colour"`
	Quantity int    `json:"quantity"`
}

// Rows returns the summary as rows sorted by colour.
func (s Summary) Rows() []Row {
	cs := s.Colours()
	out := make([]Row, len(cs))
	for i, c := range cs {
		out[i] = Row{Colour: c, Quantity: s[c]}
	}
	return out
}
