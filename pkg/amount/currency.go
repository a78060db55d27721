// Package amount implements the exact dual-currency amount model.
//
// Every amount is stored as a signed count of nano-units (1 whole unit = 1e9 nano)
// tagged with its currency. All comparisons and arithmetic operate on the nano
// value; decimal strings are only produced at the edges for display and transport.
package amount

import (
	"fmt"
	"strings"
)

// Currency identifies one of the two supported currencies.
type Currency int

const (
	// Token is the integer-counted platform currency.
	Token Currency = iota + 1
	// Chain is the fractional blockchain currency.
	Chain
)

// NanoDecimals is the number of fractional digits tracked internally for every currency.
const NanoDecimals = 9

const nanoPerUnit int64 = 1_000_000_000

// String returns the wire name of the currency.
func (c Currency) String() string {
	switch c {
	case Token:
		return "TOKEN"
	case Chain:
		return "CHAIN"
	default:
		return fmt.Sprintf("Currency(%d)", int(c))
	}
}

// Decimals returns the number of fractional digits the currency exposes in its
// decimal representation.
func (c Currency) Decimals() int32 {
	if c == Chain {
		return NanoDecimals
	}
	return 0
}

// Valid reports whether c is a known currency.
func (c Currency) Valid() bool {
	return c == Token || c == Chain
}

// ParseCurrency parses a currency name, case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TOKEN":
		return Token, nil
	case "CHAIN":
		return Chain, nil
	default:
		return 0, fmt.Errorf("unknown currency %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler. The zero currency encodes as "".
func (c Currency) MarshalText() ([]byte, error) {
	if c == 0 {
		return []byte{}, nil
	}
	if !c.Valid() {
		return nil, fmt.Errorf("invalid currency %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Currency) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = 0
		return nil
	}
	parsed, err := ParseCurrency(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
