package evm

import (
	"context"
	"math/big"
	"time"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// AddLiquidity deposits both legs of a token pair into its pool through the
// router, tolerating the given fractional slippage on each leg.
func (c *connector) AddLiquidity(ctx context.Context, tokenA, tokenB string, amountA, amountB, slippageTolerance decimal.Decimal) (*types.Transaction, error) {
	if !amountA.IsPositive() || !amountB.IsPositive() {
		return nil, errors.New("liquidity amounts must be positive")
	}
	if !types.ValidSlippage(slippageTolerance) {
		return nil, errors.New("slippage tolerance must be in [0, 1]")
	}

	a, err := parseTokenAddress(tokenA)
	if err != nil {
		return nil, err
	}
	b, err := parseTokenAddress(tokenB)
	if err != nil {
		return nil, err
	}
	if a == b {
		return nil, errors.New("pool tokens must be distinct")
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	metaA, err := c.fetchTokenMeta(ctx, a)
	if err != nil {
		return nil, err
	}
	metaB, err := c.fetchTokenMeta(ctx, b)
	if err != nil {
		return nil, err
	}

	rawA := types.RawAmount(amountA, metaA.decimals)
	rawB := types.RawAmount(amountB, metaB.decimals)
	rawAMin := types.RawAmount(types.MinimumOutput(amountA, slippageTolerance), metaA.decimals)
	rawBMin := types.RawAmount(types.MinimumOutput(amountB, slippageTolerance), metaB.decimals)

	for _, leg := range []struct {
		token common.Address
		raw   *big.Int
		name  string
	}{{a, rawA, tokenA}, {b, rawB, tokenB}} {
		balance, err := c.erc20BalanceOf(ctx, leg.token, c.wallet)
		if err != nil {
			return nil, err
		}
		if balance.Cmp(leg.raw) < 0 {
			return nil, commonerrors.Newf(commonerrors.InsufficientBalance,
				"wallet holds %s of %s, need %s", balance, leg.name, leg.raw)
		}
		if err := c.ensureAllowance(ctx, leg.token, leg.raw); err != nil {
			return nil, err
		}
	}

	_, router, _, _, err := contractABIs()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse router ABI")
	}

	deadline := big.NewInt(time.Now().Add(txDeadline).Unix())
	data, err := router.Pack("addLiquidity", a, b, rawA, rawB, rawAMin, rawBMin, c.wallet, deadline)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to pack addLiquidity data")
	}

	tx, err := c.submitTransaction(ctx, common.HexToAddress(c.params.router), big.NewInt(0), data)
	if err != nil {
		return nil, err
	}

	return types.NewPendingTransaction(tx.Hash().Hex()), nil
}

// RemoveLiquidity burns LP tokens of the pair's pool through the router and
// returns both legs to the wallet.
func (c *connector) RemoveLiquidity(ctx context.Context, tokenA, tokenB string, liquidity decimal.Decimal) (*types.Transaction, error) {
	if !liquidity.IsPositive() {
		return nil, errors.New("liquidity amount must be positive")
	}

	a, err := parseTokenAddress(tokenA)
	if err != nil {
		return nil, err
	}
	b, err := parseTokenAddress(tokenB)
	if err != nil {
		return nil, err
	}
	if a == b {
		return nil, errors.New("pool tokens must be distinct")
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	pair, err := c.getPairAddress(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if pair == (common.Address{}) {
		return nil, commonerrors.Newf(commonerrors.PoolNotFound, "no pool for pair %s/%s", a.Hex(), b.Hex())
	}

	// LP tokens always carry 18 decimals.
	rawLiquidity := types.RawAmount(liquidity, nativeDecimals)

	lpBalance, err := c.erc20BalanceOf(ctx, pair, c.wallet)
	if err != nil {
		return nil, err
	}
	if lpBalance.Cmp(rawLiquidity) < 0 {
		return nil, commonerrors.Newf(commonerrors.InsufficientBalance,
			"wallet holds %s LP tokens, need %s", lpBalance, rawLiquidity)
	}

	if err := c.ensureAllowance(ctx, pair, rawLiquidity); err != nil {
		return nil, err
	}

	_, router, _, _, err := contractABIs()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse router ABI")
	}

	deadline := big.NewInt(time.Now().Add(txDeadline).Unix())
	data, err := router.Pack("removeLiquidity", a, b, rawLiquidity, big.NewInt(0), big.NewInt(0), c.wallet, deadline)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to pack removeLiquidity data")
	}

	tx, err := c.submitTransaction(ctx, common.HexToAddress(c.params.router), big.NewInt(0), data)
	if err != nil {
		return nil, err
	}

	return types.NewPendingTransaction(tx.Hash().Hex()), nil
}
