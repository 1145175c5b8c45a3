package raydium

import (
	"context"
	"math/big"
	"time"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	sol "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// quoteTTL bounds how long a quote may be acted on; vault reserves move with
// every trade against the pool.
const quoteTTL = 30 * time.Second

// constantProductOut computes the output of a constant-product swap with the
// trade fee taken from the input leg, all in exact decimal arithmetic.
//
//	out = reserveOut * inAfterFee / (reserveIn + inAfterFee)
func constantProductOut(amountIn, reserveIn, reserveOut, feeTier decimal.Decimal) decimal.Decimal {
	inAfterFee := amountIn.Mul(decimal.NewFromInt(1).Sub(feeTier))
	return reserveOut.Mul(inAfterFee).DivRound(reserveIn.Add(inAfterFee), 28)
}

// swapPlan is the resolved context of one swap against a configured pool.
type swapPlan struct {
	pool        *pool
	inMint      sol.PublicKey
	outMint     sol.PublicKey
	inDecimals  uint8
	outDecimals uint8
	// sourceVault/destVault are the pool vaults in trade direction.
	sourceVault sol.PublicKey
	destVault   sol.PublicKey
	quote       *types.SwapQuote
}

// buildSwapPlan validates the swap input, resolves the pool and prices the
// trade against live vault reserves.
func (c *connector) buildSwapPlan(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*swapPlan, error) {
	if err := validateSwapInput(tokenIn, tokenOut, amountIn, slippageTolerance); err != nil {
		return nil, err
	}

	inMint, err := parseMint(tokenIn)
	if err != nil {
		return nil, err
	}
	outMint, err := parseMint(tokenOut)
	if err != nil {
		return nil, err
	}

	p, err := c.poolFor(inMint.String(), outMint.String())
	if err != nil {
		return nil, err
	}

	inDecimals, err := c.getChain().MintDecimals(ctx, inMint)
	if err != nil {
		return nil, err
	}
	outDecimals, err := c.getChain().MintDecimals(ctx, outMint)
	if err != nil {
		return nil, err
	}

	rawA, rawB, err := c.poolReserves(ctx, p)
	if err != nil {
		return nil, err
	}

	plan := &swapPlan{
		pool:        p,
		inMint:      inMint,
		outMint:     outMint,
		inDecimals:  inDecimals,
		outDecimals: outDecimals,
	}

	var rawReserveIn, rawReserveOut *big.Int
	if inMint.Equals(p.mintA) {
		rawReserveIn, rawReserveOut = rawA, rawB
		plan.sourceVault, plan.destVault = p.vaultA, p.vaultB
	} else {
		rawReserveIn, rawReserveOut = rawB, rawA
		plan.sourceVault, plan.destVault = p.vaultB, p.vaultA
	}

	reserveIn := types.HumanAmount(rawReserveIn, inDecimals)
	reserveOut := types.HumanAmount(rawReserveOut, outDecimals)
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return nil, commonerrors.Newf(commonerrors.PoolNotFound, "pool %s has no liquidity", p.id)
	}

	expected := constantProductOut(amountIn, reserveIn, reserveOut, p.feeTier)

	plan.quote = &types.SwapQuote{
		InputToken:     inMint.String(),
		OutputToken:    outMint.String(),
		InputAmount:    amountIn,
		ExpectedOutput: expected,
		MinimumOutput:  types.MinimumOutput(expected, slippageTolerance),
		Price:          expected.DivRound(amountIn, 28),
		EstimatedFee:   c.estimateSwapFee(ctx),
		Route:          []string{inMint.String(), outMint.String()},
		ExpiresAt:      time.Now().UTC().Add(quoteTTL),
	}
	return plan, nil
}

// estimateSwapFee estimates the total transaction fee in SOL: the flat
// signature fee plus the priority fee at the current estimate across the
// swap's compute budget.
func (c *connector) estimateSwapFee(ctx context.Context) decimal.Decimal {
	base := types.HumanAmount(big.NewInt(baseFeeLamports), solDecimals)

	microLamports, err := c.getChain().PriorityFeeEstimate(ctx, nil)
	if err != nil {
		return base
	}

	// Priority fees are priced in micro-lamports per compute unit.
	priorityLamports := decimal.NewFromInt(int64(microLamports)).
		Mul(decimal.NewFromInt(swapComputeUnits)).
		Shift(-6)
	return base.Add(priorityLamports.Shift(-solDecimals))
}

// GetSwapQuote prices a swap against the configured pool's live reserves.
func (c *connector) GetSwapQuote(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.SwapQuote, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	plan, err := c.buildSwapPlan(ctx, tokenIn, tokenOut, amountIn, slippageTolerance)
	if err != nil {
		return nil, err
	}
	return plan.quote, nil
}

// parseMint validates a base58 mint address.
func parseMint(tokenAddress string) (sol.PublicKey, error) {
	if tokenAddress == "" {
		return sol.PublicKey{}, commonerrors.New(commonerrors.TokenNotFound, "token address is empty")
	}
	mint, err := sol.PublicKeyFromBase58(tokenAddress)
	if err != nil {
		return sol.PublicKey{}, commonerrors.Wrap(commonerrors.TokenNotFound, err, "token address does not parse")
	}
	return mint, nil
}

// validateSwapInput checks the shared preconditions of quote and swap calls.
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
