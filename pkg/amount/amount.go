package amount

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when a decimal string cannot be represented in the currency.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrOverflow is returned when a result does not fit into the nano range.
	ErrOverflow = errors.New("amount overflow")
	// ErrCurrencyMismatch is returned when two amounts of different currencies are combined.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInvalidRate is returned when a conversion rate is not positive.
	ErrInvalidRate = errors.New("invalid conversion rate")
)

var (
	maxNano = decimal.NewFromInt(int64(^uint64(0) >> 1))
	minNano = decimal.NewFromInt(-int64(^uint64(0)>>1) - 1)
)

// Amount is an immutable quantity of a single currency, counted in nano-units.
type Amount struct {
	currency Currency
	nano     int64
}

// Zero returns the zero amount of the currency.
func Zero(c Currency) Amount {
	return Amount{currency: c}
}

// FromNano constructs an amount from a raw nano-unit count.
func FromNano(nano int64, c Currency) Amount {
	return Amount{currency: c, nano: nano}
}

// FromWhole constructs an amount from a whole-unit count.
func FromWhole(units int64, c Currency) (Amount, error) {
	nano, err := mulInt64(units, nanoPerUnit)
	if err != nil {
		return Amount{}, err
	}
	return Amount{currency: c, nano: nano}, nil
}

// FromDecimal parses a decimal string such as "12.5" into an amount.
// The string may not carry more fractional digits than the currency exposes.
func FromDecimal(s string, c Currency) (Amount, error) {
	if !c.Valid() {
		return Amount{}, fmt.Errorf("%w: unknown currency %d", ErrInvalidAmount, int(c))
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Amount{}, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return FromDecimalValue(d, c)
}

// FromDecimalValue converts an exact decimal into an amount, rejecting values that need
// more fractional digits than the currency exposes.
func FromDecimalValue(d decimal.Decimal, c Currency) (Amount, error) {
	if !d.Truncate(c.Decimals()).Equal(d) {
		return Amount{}, fmt.Errorf("%w: %s has more than %d fractional digits for %s",
			ErrInvalidAmount, d.String(), c.Decimals(), c)
	}
	nano, err := toNano(d)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %s: %v", ErrInvalidAmount, d.String(), err)
	}
	return Amount{currency: c, nano: nano}, nil
}

// Currency returns the currency of the amount.
func (a Amount) Currency() Currency { return a.currency }

// Nano returns the raw nano-unit value.
func (a Amount) Nano() int64 { return a.nano }

// IsZero reports whether the nano value is zero.
func (a Amount) IsZero() bool { return a.nano == 0 }

// Sign returns -1, 0 or 1.
func (a Amount) Sign() int {
	switch {
	case a.nano < 0:
		return -1
	case a.nano > 0:
		return 1
	default:
		return 0
	}
}

// Whole returns the integer part in whole units, truncated toward zero.
func (a Amount) Whole() int64 { return a.nano / nanoPerUnit }

// Nanos returns the sub-unit remainder, carrying the sign of the amount.
func (a Amount) Nanos() int64 { return a.nano % nanoPerUnit }

// Decimal returns the exact value in whole units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.nano, -NanoDecimals)
}

// DecimalString returns the canonical decimal form: no exponent, no trailing zeros.
func (a Amount) DecimalString() string {
	return a.Decimal().String()
}

// String returns the decimal form followed by the currency name.
func (a Amount) String() string {
	return a.DecimalString() + " " + a.currency.String()
}

// ConvertTo converts the amount into target using rate, expressed as target units per
// one unit of the source currency. The product is rounded once, half away from zero,
// to the target currency's exposed precision.
func (a Amount) ConvertTo(target Currency, rate decimal.Decimal) (Amount, error) {
	if !target.Valid() {
		return Amount{}, fmt.Errorf("unknown target currency %d", int(target))
	}
	if !rate.IsPositive() {
		return Amount{}, fmt.Errorf("%w: %s", ErrInvalidRate, rate.String())
	}
	converted := a.Decimal().Mul(rate).Round(target.Decimals())
	nano, err := toNano(converted)
	if err != nil {
		return Amount{}, err
	}
	return Amount{currency: target, nano: nano}, nil
}

// ApplyPerMille returns amount * permille / 1000, truncated toward zero.
func (a Amount) ApplyPerMille(permille int64) (Amount, error) {
	am, an := magnitude(a.nano)
	pm, pn := magnitude(permille)
	negative := an != pn && a.nano != 0 && permille != 0

	if prod, overflow := math.SafeMul(am, pm); !overflow {
		nano, err := fromMagnitude(prod/1000, negative)
		if err != nil {
			return Amount{}, err
		}
		return Amount{currency: a.currency, nano: nano}, nil
	}

	// the intermediate product exceeds 64 bits; the quotient may still fit
	prod := new(big.Int).Mul(big.NewInt(a.nano), big.NewInt(permille))
	prod.Quo(prod, big.NewInt(1000))
	if !prod.IsInt64() {
		return Amount{}, ErrOverflow
	}
	return Amount{currency: a.currency, nano: prod.Int64()}, nil
}

// Round rounds the amount to the given number of fractional digits, half away from zero.
// Places at or beyond the nano precision leave the amount unchanged.
func (a Amount) Round(places int32) (Amount, error) {
	if places >= NanoDecimals {
		return a, nil
	}
	nano, err := toNano(a.Decimal().Round(places))
	if err != nil {
		return Amount{}, err
	}
	return Amount{currency: a.currency, nano: nano}, nil
}

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.currency != b.currency {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, a.currency, b.currency)
	}
	nano, err := addInt64(a.nano, b.nano)
	if err != nil {
		return Amount{}, err
	}
	return Amount{currency: a.currency, nano: nano}, nil
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.currency != b.currency {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, a.currency, b.currency)
	}
	neg, err := b.Neg()
	if err != nil {
		return Amount{}, err
	}
	return a.Add(neg)
}

// Neg returns -a.
func (a Amount) Neg() (Amount, error) {
	if a.nano == minInt64 {
		return Amount{}, ErrOverflow
	}
	return Amount{currency: a.currency, nano: -a.nano}, nil
}

// Abs returns |a|.
func (a Amount) Abs() (Amount, error) {
	if a.nano >= 0 {
		return a, nil
	}
	return a.Neg()
}

// Cmp compares nano values of two amounts of the same currency.
func (a Amount) Cmp(b Amount) (int, error) {
	if a.currency != b.currency {
		return 0, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.currency, b.currency)
	}
	switch {
	case a.nano < b.nano:
		return -1, nil
	case a.nano > b.nano:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equal reports whether a and b have the same currency and nano value.
func (a Amount) Equal(b Amount) bool {
	return a.currency == b.currency && a.nano == b.nano
}

// Less reports whether a < b. Amounts of different currencies are never ordered.
func (a Amount) Less(b Amount) bool {
	return a.currency == b.currency && a.nano < b.nano
}

// USDValue returns the value in USD given a per-unit USD rate, rounded to cents.
func (a Amount) USDValue(rate decimal.Decimal) decimal.Decimal {
	return a.Decimal().Mul(rate).Round(2)
}

type amountJSON struct {
	Currency Currency `json:"currency"`
	Nano     string   `json:"nano,omitempty"`
	Decimal  string   `json:"decimal,omitempty"`
}

// MarshalJSON encodes the amount with both its nano and decimal representation.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(amountJSON{
		Currency: a.currency,
		Nano:     strconv.FormatInt(a.nano, 10),
		Decimal:  a.DecimalString(),
	})
}

// UnmarshalJSON accepts either the nano or the decimal field; nano wins when both are set.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var raw amountJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case raw.Nano != "":
		nano, err := strconv.ParseInt(raw.Nano, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: nano %q", ErrInvalidAmount, raw.Nano)
		}
		*a = FromNano(nano, raw.Currency)
	case raw.Decimal != "":
		parsed, err := FromDecimal(raw.Decimal, raw.Currency)
		if err != nil {
			return err
		}
		*a = parsed
	default:
		*a = Zero(raw.Currency)
	}
	return nil
}

const minInt64 = -1 << 63

func toNano(d decimal.Decimal) (int64, error) {
	nano := d.Shift(NanoDecimals).Truncate(0)
	if nano.GreaterThan(maxNano) || nano.LessThan(minNano) {
		return 0, ErrOverflow
	}
	return nano.IntPart(), nil
}

func magnitude(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

func fromMagnitude(m uint64, negative bool) (int64, error) {
	if negative {
		if m > 1<<63 {
			return 0, ErrOverflow
		}
		return int64(-m), nil
	}
	if m > 1<<63-1 {
		return 0, ErrOverflow
	}
	return int64(m), nil
}

func addInt64(a, b int64) (int64, error) {
	am, an := magnitude(a)
	bm, bn := magnitude(b)
	if an != bn {
		return a + b, nil
	}
	sum, overflow := math.SafeAdd(am, bm)
	if overflow {
		return 0, ErrOverflow
	}
	return fromMagnitude(sum, an)
}

func mulInt64(a, b int64) (int64, error) {
	am, an := magnitude(a)
	bm, bn := magnitude(b)
	prod, overflow := math.SafeMul(am, bm)
	if overflow {
		return 0, ErrOverflow
	}
	return fromMagnitude(prod, an != bn && a != 0 && b != 0)
}
