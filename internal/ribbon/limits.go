package ribbon

import "fmt"

// Limits bounds the lookahead windows used by the order-export scan.
// The defaults were tuned against real marketplace packing slips.
type Limits struct {
	// OrderIDLookahead is how many fragments after an order marker are searched for the order id.
	OrderIDLookahead int
	// HeaderLookahead is how many fragments after an order marker are searched for the item table header.
	HeaderLookahead int
	// ContinuationMaxWords is the longest line accepted as the second line of a colour answer.
	ContinuationMaxWords int
}

const (
	DefaultOrderIDLookahead     = 50
	DefaultHeaderLookahead      = 200
	DefaultContinuationMaxWords = 5
)

// DefaultLimits returns the stock thresholds.
func DefaultLimits() Limits {
	return Limits{
		OrderIDLookahead:     DefaultOrderIDLookahead,
		HeaderLookahead:      DefaultHeaderLookahead,
		ContinuationMaxWords: DefaultContinuationMaxWords,
	}
}

// WithDefaults fills unset (zero) fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.OrderIDLookahead == 0 {
		l.OrderIDLookahead = d.OrderIDLookahead
	}
	if l.HeaderLookahead == 0 {
		l.HeaderLookahead = d.HeaderLookahead
	}
	if l.ContinuationMaxWords == 0 {
		l.ContinuationMaxWords = d.ContinuationMaxWords
	}
	return l
}

// Validate rejects negative bounds.
func (l Limits) Validate() error {
	if l.OrderIDLookahead < 0 {
		return fmt.Errorf("order id lookahead must be >= 0, got %d", l.OrderIDLookahead)
	}
	if l.HeaderLookahead < 0 {
		return fmt.Errorf("header lookahead must be >= 0, got %d", l.HeaderLookahead)
	}
	if l.ContinuationMaxWords < 0 {
		return fmt.Errorf("continuation max words must be >= 0, got %d", l.ContinuationMaxWords)
	}
	return nil
}
