package raydium

import (
	"context"

	"github.com/shopspring/decimal"
)

// GetGasPrice returns a priority-fee estimate in micro-lamports per compute
// unit, the median of the node's recently observed prioritization fees.
// Solana has no single gas price; this is the closest chain-native analogue.
func (c *connector) GetGasPrice(ctx context.Context) (decimal.Decimal, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	fee, err := c.getChain().PriorityFeeEstimate(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(int64(fee)), nil
}
