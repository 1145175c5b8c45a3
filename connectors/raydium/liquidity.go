package raydium

import (
	"context"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	sol "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AddLiquidity deposits both legs into the configured pool for the pair. The
// amounts are treated as upper bounds; the pool settles the deposit at its
// current reserve ratio.
func (c *connector) AddLiquidity(ctx context.Context, tokenA, tokenB string, amountA, amountB, slippageTolerance decimal.Decimal) (*types.Transaction, error) {
	if tokenA == tokenB {
		return nil, errors.New("pool legs must be distinct tokens")
	}
	if !amountA.IsPositive() || !amountB.IsPositive() {
		return nil, errors.New("amounts must be positive")
	}
	if !types.ValidSlippage(slippageTolerance) {
		return nil, errors.New("slippage tolerance must be in [0, 1]")
	}

	mintA, err := parseMint(tokenA)
	if err != nil {
		return nil, err
	}
	mintB, err := parseMint(tokenB)
	if err != nil {
		return nil, err
	}

	p, err := c.poolFor(mintA.String(), mintB.String())
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	// Orient the caller's legs to the pool's base/quote layout.
	baseAmount, quoteAmount := amountA, amountB
	if !mintA.Equals(p.mintA) {
		baseAmount, quoteAmount = amountB, amountA
	}

	baseDecimals, err := c.getChain().MintDecimals(ctx, p.mintA)
	if err != nil {
		return nil, err
	}
	quoteDecimals, err := c.getChain().MintDecimals(ctx, p.mintB)
	if err != nil {
		return nil, err
	}

	for _, leg := range []struct {
		mint   sol.PublicKey
		amount decimal.Decimal
	}{
		{p.mintA, baseAmount},
		{p.mintB, quoteAmount},
	} {
		held, err := c.getChain().TokenBalance(ctx, c.wallet.PublicKey(), leg.mint)
		if err != nil {
			return nil, err
		}
		if held.Amount.LessThan(leg.amount) {
			return nil, commonerrors.Newf(commonerrors.InsufficientBalance,
				"wallet holds %s of %s, need %s", held.Amount, leg.mint, leg.amount)
		}
	}

	owner := c.wallet.PublicKey()
	userBase, userQuote, userLP, err := c.userPoolAccounts(owner, p)
	if err != nil {
		return nil, err
	}

	instructions, err := c.computeBudgetInstructions(ctx)
	if err != nil {
		return nil, err
	}

	createLP, err := c.createATAInstructionIfMissing(ctx, userLP, p.lpMint)
	if err != nil {
		return nil, err
	}
	if createLP != nil {
		instructions = append(instructions, createLP)
	}

	instructions = append(instructions, buildDepositInstruction(
		p, owner, userBase, userQuote, userLP,
		types.RawAmount(baseAmount, baseDecimals).Uint64(),
		types.RawAmount(quoteAmount, quoteDecimals).Uint64(),
	))

	sig, err := c.submitInstructions(ctx, instructions)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"dex":       types.Raydium,
		"pool":      p.id.String(),
		"signature": sig.String(),
	}).Info("Liquidity deposit submitted")

	return types.NewPendingTransaction(sig.String()), nil
}

// RemoveLiquidity burns the given amount of the pool's LP tokens, withdrawing
// both legs.
func (c *connector) RemoveLiquidity(ctx context.Context, tokenA, tokenB string, liquidity decimal.Decimal) (*types.Transaction, error) {
	if tokenA == tokenB {
		return nil, errors.New("pool legs must be distinct tokens")
	}
	if !liquidity.IsPositive() {
		return nil, errors.New("liquidity amount must be positive")
	}

	mintA, err := parseMint(tokenA)
	if err != nil {
		return nil, err
	}
	mintB, err := parseMint(tokenB)
	if err != nil {
		return nil, err
	}

	p, err := c.poolFor(mintA.String(), mintB.String())
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	held, err := c.getChain().TokenBalance(ctx, c.wallet.PublicKey(), p.lpMint)
	if err != nil {
		return nil, err
	}
	if held.Amount.LessThan(liquidity) {
		return nil, commonerrors.Newf(commonerrors.InsufficientBalance,
			"wallet holds %s LP tokens, need %s", held.Amount, liquidity)
	}

	owner := c.wallet.PublicKey()
	userBase, userQuote, userLP, err := c.userPoolAccounts(owner, p)
	if err != nil {
		return nil, err
	}

	instructions, err := c.computeBudgetInstructions(ctx)
	if err != nil {
		return nil, err
	}

	instructions = append(instructions, buildWithdrawInstruction(
		p, owner, userBase, userQuote, userLP,
		types.RawAmount(liquidity, held.Decimals).Uint64(),
	))

	sig, err := c.submitInstructions(ctx, instructions)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"dex":       types.Raydium,
		"pool":      p.id.String(),
		"signature": sig.String(),
	}).Info("Liquidity withdrawal submitted")

	return types.NewPendingTransaction(sig.String()), nil
}

// userPoolAccounts derives the wallet's associated token accounts for both
// pool legs and the LP mint.
func (c *connector) userPoolAccounts(owner sol.PublicKey, p *pool) (base, quote, lp sol.PublicKey, err error) {
	base, _, err = sol.FindAssociatedTokenAddress(owner, p.mintA)
	if err != nil {
		return base, quote, lp, commonerrors.Wrap(commonerrors.InternalError, err, "failed to derive base token account")
	}
	quote, _, err = sol.FindAssociatedTokenAddress(owner, p.mintB)
	if err != nil {
		return base, quote, lp, commonerrors.Wrap(commonerrors.InternalError, err, "failed to derive quote token account")
	}
	lp, _, err = sol.FindAssociatedTokenAddress(owner, p.lpMint)
	if err != nil {
		return base, quote, lp, commonerrors.Wrap(commonerrors.InternalError, err, "failed to derive LP token account")
	}
	return base, quote, lp, nil
}
