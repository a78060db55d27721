package config

import (
	"fmt"

	"github.com/chainsafe/revenue-middleware/pkg/amount"
)

// Build parses both ranges into withdrawal limits.
func (l LimitsConfig) Build() (*amount.Limits, error) {
	limits := amount.NewLimits()
	for _, r := range []struct {
		currency amount.Currency
		cfg      RangeConfig
	}{
		{amount.Token, l.Token},
		{amount.Chain, l.Chain},
	} {
		minimum, err := amount.FromDecimal(r.cfg.Min, r.currency)
		if err != nil {
			return nil, fmt.Errorf("limits.%s.min: %w", r.currency, err)
		}
		maximum, err := amount.FromDecimal(r.cfg.Max, r.currency)
		if err != nil {
			return nil, fmt.Errorf("limits.%s.max: %w", r.currency, err)
		}
		if err := limits.Set(r.currency, minimum, maximum); err != nil {
			return nil, fmt.Errorf("limits.%s: %w", r.currency, err)
		}
	}
	return limits, nil
}
