package evm

import (
	"context"
	"math/big"
	"time"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// txDeadline is the on-chain deadline attached to router calls.
const txDeadline = 20 * time.Minute

// ExecuteSwap quotes, simulates and submits a swap through the V2 router.
// Each call submits a new transaction; callers needing idempotence must
// deduplicate upstream. The on-chain outcome is checked later via
// GetTransactionStatus.
func (c *connector) ExecuteSwap(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.Transaction, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	quote, err := c.buildQuote(ctx, tokenIn, tokenOut, amountIn, slippageTolerance)
	if err != nil {
		return nil, err
	}

	in := common.HexToAddress(quote.InputToken)
	inMeta, err := c.fetchTokenMeta(ctx, in)
	if err != nil {
		return nil, err
	}
	outMeta, err := c.fetchTokenMeta(ctx, common.HexToAddress(quote.OutputToken))
	if err != nil {
		return nil, err
	}

	rawIn := types.RawAmount(quote.InputAmount, inMeta.decimals)
	rawMin := types.RawAmount(quote.MinimumOutput, outMeta.decimals)

	// Pre-flight balance check.
	balance, err := c.erc20BalanceOf(ctx, in, c.wallet)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(rawIn) < 0 {
		return nil, commonerrors.Newf(commonerrors.InsufficientBalance,
			"wallet holds %s of %s, need %s", balance, quote.InputToken, rawIn)
	}

	// Re-simulate at execution time: the pool may have moved since the quote.
	path := make([]common.Address, len(quote.Route))
	for i, hop := range quote.Route {
		path[i] = common.HexToAddress(hop)
	}
	amounts, err := c.getAmountsOut(ctx, rawIn, path)
	if err != nil {
		return nil, err
	}
	simulated := amounts[len(amounts)-1]
	if simulated.Cmp(rawMin) < 0 {
		return nil, commonerrors.Newf(commonerrors.SlippageTooHigh,
			"simulated output %s below minimum %s",
			types.HumanAmount(simulated, outMeta.decimals), quote.MinimumOutput)
	}

	if err := c.ensureAllowance(ctx, in, rawIn); err != nil {
		return nil, err
	}

	_, router, _, _, err := contractABIs()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse router ABI")
	}

	deadline := big.NewInt(time.Now().Add(txDeadline).Unix())
	data, err := router.Pack("swapExactTokensForTokens", rawIn, rawMin, path, c.wallet, deadline)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to pack swap data")
	}

	tx, err := c.submitTransaction(ctx, common.HexToAddress(c.params.router), big.NewInt(0), data)
	if err != nil {
		return nil, err
	}

	return types.NewPendingTransaction(tx.Hash().Hex()), nil
}
