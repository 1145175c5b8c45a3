package types

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanAmountIsExact(t *testing.T) {
	// 123456789123456789123456789 wei at 18 decimals.
	raw, ok := new(big.Int).SetString("123456789123456789123456789", 10)
	require.True(t, ok)

	amount := HumanAmount(raw, 18)
	assert.Equal(t, "123456789.123456789123456789", amount.String())

	// The shift back must reproduce the raw value with no precision loss.
	assert.Zero(t, raw.Cmp(RawAmount(amount, 18)))
}

func TestRawAmountTruncatesBelowSmallestUnit(t *testing.T) {
	amount := decimal.RequireFromString("1.0000005")
	assert.Equal(t, big.NewInt(1000000), RawAmount(amount, 6))
}

func TestHumanAmountNilRaw(t *testing.T) {
	assert.True(t, HumanAmount(nil, 18).IsZero())
}

func TestNewTokenBalance(t *testing.T) {
	tb := NewTokenBalance("0xdead", "USDC", 6, big.NewInt(1_500_000))

	assert.Equal(t, "0xdead", tb.Address)
	assert.Equal(t, "USDC", tb.Symbol)
	assert.Equal(t, uint8(6), tb.Decimals)
	assert.Equal(t, "1.5", tb.Amount.String())
}
