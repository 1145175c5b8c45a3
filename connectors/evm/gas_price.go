package evm

import (
	"context"
	"math/big"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/shopspring/decimal"
)

// gweiDecimals converts wei to gwei.
const gweiDecimals = 9

// GetGasPrice returns the current EIP-1559 gas price, base fee plus suggested
// priority fee, summarized as a single decimal in gwei.
func (c *connector) GetGasPrice(ctx context.Context) (decimal.Decimal, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	client := c.getClient()
	if client == nil {
		return decimal.Zero, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return decimal.Zero, commonerrors.WrapNetwork(err, "failed to get header by number")
	}
	if header.BaseFee == nil {
		return decimal.Zero, commonerrors.New(commonerrors.NetworkError, "base fee is nil")
	}

	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return decimal.Zero, commonerrors.WrapNetwork(err, "failed to get suggested gas tip")
	}

	total := new(big.Int).Add(header.BaseFee, tip)
	return types.HumanAmount(total, gweiDecimals), nil
}
