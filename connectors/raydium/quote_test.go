package raydium

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConstantProductOutNoFee(t *testing.T) {
	// 1000 in against 100000/50000 reserves: out = 50000*1000/101000.
	out := constantProductOut(dec("1000"), dec("100000"), dec("50000"), decimal.Zero)
	assert.Equal(t, "495.049504950495049504950495", out.Round(24).String())
}

func TestConstantProductOutWithFee(t *testing.T) {
	// The 0.25% fee shrinks the effective input before the invariant math.
	withFee := constantProductOut(dec("1000"), dec("100000"), dec("50000"), dec("0.0025"))
	noFee := constantProductOut(dec("1000"), dec("100000"), dec("50000"), decimal.Zero)
	assert.True(t, withFee.LessThan(noFee))

	// out = 50000 * 997.5 / 100997.5
	expected := dec("50000").Mul(dec("997.5")).DivRound(dec("100997.5"), 28)
	assert.True(t, withFee.Equal(expected))
}

func TestConstantProductOutNeverDrainsReserve(t *testing.T) {
	// Even an absurdly large trade cannot consume the full output reserve.
	out := constantProductOut(dec("1000000000"), dec("1000"), dec("500"), decimal.Zero)
	assert.True(t, out.LessThan(dec("500")))
}

func TestConstantProductPriceImpactGrowsWithSize(t *testing.T) {
	small := constantProductOut(dec("10"), dec("100000"), dec("50000"), decimal.Zero).Div(dec("10"))
	large := constantProductOut(dec("10000"), dec("100000"), dec("50000"), decimal.Zero).Div(dec("10000"))
	assert.True(t, large.LessThan(small), "per-unit output must degrade with trade size")
}

func TestValidateSwapInput(t *testing.T) {
	usdc := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	wsol := "So11111111111111111111111111111111111111112"
	one := decimal.NewFromInt(1)
	tol := dec("0.01")

	assert.NoError(t, validateSwapInput(usdc, wsol, one, tol))
	assert.Error(t, validateSwapInput(usdc, usdc, one, tol))
	assert.Error(t, validateSwapInput(usdc, wsol, decimal.Zero, tol))
	assert.Error(t, validateSwapInput(usdc, wsol, one, dec("-0.1")))
	assert.Error(t, validateSwapInput(usdc, wsol, one, dec("2")))
}

func TestParseMint(t *testing.T) {
	_, err := parseMint("So11111111111111111111111111111111111111112")
	assert.NoError(t, err)

	_, err = parseMint("")
	assert.Error(t, err)

	_, err = parseMint("not-base58!!!")
	assert.Error(t, err)
}
