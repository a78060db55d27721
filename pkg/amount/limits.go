package amount

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrLimitsNotSet is returned when limits are queried before both currencies are configured.
	ErrLimitsNotSet = errors.New("amount limits not set")
	// ErrInvalidLimits is returned when min > max or the bounds disagree on currency.
	ErrInvalidLimits = errors.New("invalid amount limits")
)

// Range is an inclusive [Min, Max] pair of one currency.
type Range struct {
	Min Amount `json:"min"`
	Max Amount `json:"max"`
}

// Limits holds independent per-currency ranges. It is safe for concurrent use.
type Limits struct {
	mu     sync.RWMutex
	ranges map[Currency]Range
}

// NewLimits returns empty limits.
func NewLimits() *Limits {
	return &Limits{ranges: make(map[Currency]Range, 2)}
}

// Set replaces the range of currency c.
func (l *Limits) Set(c Currency, min, max Amount) error {
	if !c.Valid() {
		return fmt.Errorf("%w: unknown currency %d", ErrInvalidLimits, int(c))
	}
	if min.Currency() != c || max.Currency() != c {
		return fmt.Errorf("%w: bounds %s/%s for %s", ErrCurrencyMismatch, min.Currency(), max.Currency(), c)
	}
	if max.Less(min) {
		return fmt.Errorf("%w: min %s > max %s", ErrInvalidLimits, min, max)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.ranges[c] = Range{Min: min, Max: max}
	return nil
}

// Ready reports whether both currencies have a range.
func (l *Limits) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readyLocked()
}

// Get returns the range of currency c.
func (l *Limits) Get(c Currency) (Range, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.readyLocked() {
		return Range{}, ErrLimitsNotSet
	}
	r, ok := l.ranges[c]
	if !ok {
		return Range{}, fmt.Errorf("%w: %s", ErrLimitsNotSet, c)
	}
	return r, nil
}

// Contains reports whether a lies within its currency's range.
func (l *Limits) Contains(a Amount) (bool, error) {
	r, err := l.Get(a.Currency())
	if err != nil {
		return false, err
	}
	return !a.Less(r.Min) && !r.Max.Less(a), nil
}

// Clamp returns a moved into its currency's range.
func (l *Limits) Clamp(a Amount) (Amount, error) {
	r, err := l.Get(a.Currency())
	if err != nil {
		return Amount{}, err
	}
	switch {
	case a.Less(r.Min):
		return r.Min, nil
	case r.Max.Less(a):
		return r.Max, nil
	default:
		return a, nil
	}
}

func (l *Limits) readyLocked() bool {
	_, token := l.ranges[Token]
	_, chain := l.ranges[Chain]
	return token && chain
}
