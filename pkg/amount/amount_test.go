package amount

import (
	"encoding/json"
	"errors"
	stdmath "math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string, c Currency) Amount {
	t.Helper()
	a, err := FromDecimal(s, c)
	require.NoError(t, err)
	return a
}

func TestFromDecimal_CanonicalRoundTrip(t *testing.T) {
	tests := []struct {
		in       string
		currency Currency
		want     string
	}{
		{"100", Token, "100"},
		{"007", Token, "7"},
		{"-0", Token, "0"},
		{"1.000", Token, "1"},
		{"1.5", Chain, "1.5"},
		{"1.50", Chain, "1.5"},
		{"0.000000001", Chain, "0.000000001"},
		{"-12.340000000", Chain, "-12.34"},
		{"  3 ", Chain, "3"},
		{"1e3", Chain, "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a := mustDecimal(t, tt.in, tt.currency)
			assert.Equal(t, tt.want, a.DecimalString())
			assert.Equal(t, tt.currency, a.Currency())

			again := mustDecimal(t, a.DecimalString(), tt.currency)
			assert.True(t, a.Equal(again))
		})
	}
}

func TestFromDecimal_NanoScale(t *testing.T) {
	a := mustDecimal(t, "100", Token)
	assert.Equal(t, int64(100_000_000_000), a.Nano())
	assert.Equal(t, int64(100), a.Whole())
	assert.Equal(t, int64(0), a.Nanos())

	b := mustDecimal(t, "2.000000007", Chain)
	assert.Equal(t, int64(2_000_000_007), b.Nano())
	assert.Equal(t, int64(7), b.Nanos())
}

func TestFromDecimal_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		currency Currency
	}{
		{"empty", "", Chain},
		{"garbage", "12abc", Chain},
		{"token fraction", "1.5", Token},
		{"chain beyond nano", "0.0000000001", Chain},
		{"out of range", "10000000000", Chain},
		{"unknown currency", "1", Currency(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDecimal(tt.in, tt.currency)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAmount), "got %v", err)
		})
	}
}

func TestApplyPerMille(t *testing.T) {
	samples := []Amount{
		Zero(Token),
		FromNano(1, Chain),
		FromNano(-7, Chain),
		mustDecimal(t, "123.456789", Chain),
		FromNano(stdmath.MaxInt64, Chain),
		FromNano(stdmath.MinInt64, Token),
	}

	for _, a := range samples {
		t.Run(a.String(), func(t *testing.T) {
			same, err := a.ApplyPerMille(1000)
			require.NoError(t, err)
			assert.True(t, a.Equal(same))

			zero, err := a.ApplyPerMille(0)
			require.NoError(t, err)
			assert.True(t, zero.IsZero())
			assert.Equal(t, a.Currency(), zero.Currency())
		})
	}
}

func TestApplyPerMille_TruncatesTowardZero(t *testing.T) {
	fee, err := FromNano(1999, Chain).ApplyPerMille(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fee.Nano())

	fee, err = FromNano(-1999, Chain).ApplyPerMille(1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), fee.Nano())

	fee, err = mustDecimal(t, "250", Token).ApplyPerMille(35)
	require.NoError(t, err)
	assert.Equal(t, "8.75", fee.DecimalString())
}

func TestApplyPerMille_Overflow(t *testing.T) {
	_, err := FromNano(stdmath.MaxInt64, Chain).ApplyPerMille(2000)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestConvertTo(t *testing.T) {
	stars := mustDecimal(t, "1000", Token)

	chain, err := stars.ConvertTo(Chain, decimal.RequireFromString("0.0025"))
	require.NoError(t, err)
	assert.Equal(t, Chain, chain.Currency())
	assert.Equal(t, "2.5", chain.DecimalString())

	back, err := mustDecimal(t, "1.25", Chain).ConvertTo(Token, decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "4", back.DecimalString(), "3.75 rounds half away from zero")

	neg, err := mustDecimal(t, "-1.5", Chain).ConvertTo(Token, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, "-2", neg.DecimalString())

	_, err = stars.ConvertTo(Chain, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestRound(t *testing.T) {
	a := mustDecimal(t, "1.234567891", Chain)

	r, err := a.Round(2)
	require.NoError(t, err)
	assert.Equal(t, "1.23", r.DecimalString())

	r, err = mustDecimal(t, "-0.125", Chain).Round(2)
	require.NoError(t, err)
	assert.Equal(t, "-0.13", r.DecimalString())

	r, err = a.Round(12)
	require.NoError(t, err)
	assert.True(t, a.Equal(r))

	_, err = FromNano(stdmath.MaxInt64, Chain).Round(0)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestArithmetic(t *testing.T) {
	a := mustDecimal(t, "1.5", Chain)
	b := mustDecimal(t, "0.25", Chain)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "1.75", sum.DecimalString())

	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, "-1.25", diff.DecimalString())
	assert.Equal(t, -1, diff.Sign())

	abs, err := diff.Abs()
	require.NoError(t, err)
	assert.Equal(t, "1.25", abs.DecimalString())

	_, err = a.Add(mustDecimal(t, "1", Token))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = FromNano(stdmath.MaxInt64, Chain).Add(FromNano(1, Chain))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FromNano(stdmath.MinInt64, Chain).Neg()
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FromWhole(stdmath.MaxInt64/10, Token)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestComparisonsUseNanoValue(t *testing.T) {
	a := FromNano(1_000_000_001, Chain)
	b := FromNano(1_000_000_002, Chain)

	rounded, err := a.Round(2)
	require.NoError(t, err)
	roundedB, err := b.Round(2)
	require.NoError(t, err)
	require.True(t, rounded.Equal(roundedB))

	assert.False(t, a.Equal(b))
	assert.True(t, a.Less(b))
	cmp, err := b.Cmp(a)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	_, err = a.Cmp(FromNano(1, Token))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	assert.False(t, FromNano(1, Token).Less(FromNano(2, Chain)))
}

func TestUSDValue(t *testing.T) {
	a := mustDecimal(t, "3.333", Chain)
	assert.Equal(t, "6.67", a.USDValue(decimal.NewFromInt(2)).String())
}

func TestJSON(t *testing.T) {
	a := mustDecimal(t, "12.5", Chain)

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"CHAIN","nano":"12500000000","decimal":"12.5"}`, string(raw))

	var fromDecimal Amount
	require.NoError(t, json.Unmarshal([]byte(`{"currency":"TOKEN","decimal":"40"}`), &fromDecimal))
	assert.Equal(t, int64(40_000_000_000), fromDecimal.Nano())

	var bad Amount
	err = json.Unmarshal([]byte(`{"currency":"TOKEN","decimal":"0.5"}`), &bad)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	err = json.Unmarshal([]byte(`{"currency":"GOLD","nano":"1"}`), &bad)
	assert.Error(t, err)
}
