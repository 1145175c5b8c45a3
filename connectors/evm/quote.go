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

const (
	// quoteTTL bounds how long a quote may be acted on.
	quoteTTL = 30 * time.Second
	// swapGasLimit is the gas budget assumed for a V2 swap when estimating fees.
	swapGasLimit = 180_000
)

// GetSwapQuote estimates the output of a swap through the exchange's V2
// router. The route is direct when a pair exists and otherwise hops through
// the wrapped native token.
func (c *connector) GetSwapQuote(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.SwapQuote, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	return c.buildQuote(ctx, tokenIn, tokenOut, amountIn, slippageTolerance)
}

// buildQuote is the quote path shared by GetSwapQuote and ExecuteSwap; the
// caller owns the context deadline.
func (c *connector) buildQuote(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.SwapQuote, error) {
	if err := validateSwapInput(tokenIn, tokenOut, amountIn, slippageTolerance); err != nil {
		return nil, err
	}

	in, err := parseTokenAddress(tokenIn)
	if err != nil {
		return nil, err
	}
	out, err := parseTokenAddress(tokenOut)
	if err != nil {
		return nil, err
	}

	inMeta, err := c.fetchTokenMeta(ctx, in)
	if err != nil {
		return nil, err
	}
	outMeta, err := c.fetchTokenMeta(ctx, out)
	if err != nil {
		return nil, err
	}

	path, err := c.resolveRoute(ctx, in, out)
	if err != nil {
		return nil, err
	}

	rawIn := types.RawAmount(amountIn, inMeta.decimals)
	amounts, err := c.getAmountsOut(ctx, rawIn, path)
	if err != nil {
		return nil, err
	}

	expected := types.HumanAmount(amounts[len(amounts)-1], outMeta.decimals)
	fee, err := c.estimateSwapFee(ctx)
	if err != nil {
		return nil, err
	}

	route := make([]string, len(path))
	for i, hop := range path {
		route[i] = hop.Hex()
	}

	return &types.SwapQuote{
		InputToken:     in.Hex(),
		OutputToken:    out.Hex(),
		InputAmount:    amountIn,
		ExpectedOutput: expected,
		MinimumOutput:  types.MinimumOutput(expected, slippageTolerance),
		Price:          expected.DivRound(amountIn, 28),
		EstimatedFee:   fee,
		Route:          route,
		ExpiresAt:      time.Now().UTC().Add(quoteTTL),
	}, nil
}

// resolveRoute returns a direct path when a pair exists and otherwise falls
// back to a multi-hop route through the wrapped native token.
func (c *connector) resolveRoute(ctx context.Context, in, out common.Address) ([]common.Address, error) {
	pair, err := c.getPairAddress(ctx, in, out)
	if err != nil {
		return nil, err
	}
	if pair != (common.Address{}) {
		return []common.Address{in, out}, nil
	}

	wrapped := common.HexToAddress(c.params.wrappedNative)
	if in == wrapped || out == wrapped {
		return nil, commonerrors.Newf(commonerrors.PoolNotFound, "no pool for pair %s/%s", in.Hex(), out.Hex())
	}

	inLeg, err := c.getPairAddress(ctx, in, wrapped)
	if err != nil {
		return nil, err
	}
	outLeg, err := c.getPairAddress(ctx, wrapped, out)
	if err != nil {
		return nil, err
	}
	if inLeg == (common.Address{}) || outLeg == (common.Address{}) {
		return nil, commonerrors.Newf(commonerrors.PoolNotFound, "no route for pair %s/%s", in.Hex(), out.Hex())
	}

	return []common.Address{in, wrapped, out}, nil
}

// getPairAddress asks the factory for the pair contract of two tokens. The
// zero address means the pair does not exist.
func (c *connector) getPairAddress(ctx context.Context, a, b common.Address) (common.Address, error) {
	_, _, factory, _, err := contractABIs()
	if err != nil {
		return common.Address{}, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse factory ABI")
	}

	values, err := c.callContract(ctx, common.HexToAddress(c.params.factory), factory, "getPair", a, b)
	if err != nil {
		return common.Address{}, err
	}

	pair, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, commonerrors.New(commonerrors.ContractError, "unexpected getPair type")
	}
	return pair, nil
}

// getAmountsOut runs the router's amounts-out simulation along a path.
func (c *connector) getAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	_, router, _, _, err := contractABIs()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse router ABI")
	}

	values, err := c.callContract(ctx, common.HexToAddress(c.params.router), router, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}

	amounts, ok := values[0].([]*big.Int)
	if !ok || len(amounts) != len(path) {
		return nil, commonerrors.New(commonerrors.ContractError, "unexpected getAmountsOut result")
	}
	return amounts, nil
}

// estimateSwapFee approximates the swap's network fee in the native unit.
func (c *connector) estimateSwapFee(ctx context.Context) (decimal.Decimal, error) {
	client := c.getClient()
	if client == nil {
		return decimal.Zero, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return decimal.Zero, commonerrors.WrapNetwork(err, "failed to get gas price")
	}

	wei := new(big.Int).Mul(gasPrice, big.NewInt(swapGasLimit))
	return types.HumanAmount(wei, nativeDecimals), nil
}

// validateSwapInput checks the shared preconditions of quote and swap calls.
// Violations are caller bugs, not chain failures, so they stay uncategorized.
func validateSwapInput(tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) error {
	if tokenIn == tokenOut {
		return errors.New("input and output tokens must be distinct")
	}
	if !amountIn.IsPositive() {
		return errors.New("amount must be positive")
	}
	if !types.ValidSlippage(slippageTolerance) {
		return errors.New("slippage tolerance must be in [0, 1]")
	}
	return nil
}
