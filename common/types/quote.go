package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// SwapQuote represents a non-binding estimate of swap output at current chain
// state. A quote is immutable and consumed once; after ExpiresAt it must not
// be executed.
//
// Fields:
// - InputToken: the token being sold.
// - OutputToken: the token being bought.
// - InputAmount: the amount of input token, human units.
// - ExpectedOutput: the estimated output amount, human units.
// - MinimumOutput: the floor below which execution fails with SlippageTooHigh.
// - Price: effective price as output per unit of input.
// - EstimatedFee: estimated gas or network fee in the chain's native unit.
// - Route: ordered token addresses the swap hops through.
// - ExpiresAt: the instant after which the quote is stale.
type SwapQuote struct {
	InputToken     string
	OutputToken    string
	InputAmount    decimal.Decimal
	ExpectedOutput decimal.Decimal
	MinimumOutput  decimal.Decimal
	Price          decimal.Decimal
	EstimatedFee   decimal.Decimal
	Route          []string
	ExpiresAt      time.Time
}

// MinimumOutput applies a fractional slippage tolerance to an expected output.
// The tolerance must be in (0, 1]; zero tolerance demands the full expected
// output.
func MinimumOutput(expected, slippageTolerance decimal.Decimal) decimal.Decimal {
	return expected.Mul(decimal.NewFromInt(1).Sub(slippageTolerance))
}

// ValidSlippage reports whether a fractional slippage tolerance lies in [0, 1].
// Zero is accepted: it means the trader requires the full expected output.
func ValidSlippage(s decimal.Decimal) bool {
	return !s.IsNegative() && s.LessThanOrEqual(decimal.NewFromInt(1))
}
