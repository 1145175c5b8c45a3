package evm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateSwapInput(t *testing.T) {
	usdc := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	weth := "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	one := decimal.NewFromInt(1)
	half := decimal.RequireFromString("0.005")

	assert.NoError(t, validateSwapInput(usdc, weth, one, half))
	assert.NoError(t, validateSwapInput(usdc, weth, one, decimal.Zero))

	assert.Error(t, validateSwapInput(usdc, usdc, one, half), "identical tokens")
	assert.Error(t, validateSwapInput(usdc, weth, decimal.Zero, half), "zero amount")
	assert.Error(t, validateSwapInput(usdc, weth, one.Neg(), half), "negative amount")
	assert.Error(t, validateSwapInput(usdc, weth, one, decimal.RequireFromString("1.5")), "slippage above one")
	assert.Error(t, validateSwapInput(usdc, weth, one, half.Neg()), "negative slippage")
}
