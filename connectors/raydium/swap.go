package raydium

import (
	"context"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	sol "github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ExecuteSwap prices the swap against live reserves, builds the swap
// transaction and submits it. The minimum output derived from the slippage
// tolerance is enforced on chain by the AMM program.
func (c *connector) ExecuteSwap(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.Transaction, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	plan, err := c.buildSwapPlan(ctx, tokenIn, tokenOut, amountIn, slippageTolerance)
	if err != nil {
		return nil, err
	}

	owner := c.wallet.PublicKey()

	held, err := c.getChain().TokenBalance(ctx, owner, plan.inMint)
	if err != nil {
		return nil, err
	}
	if held.Amount.LessThan(amountIn) {
		return nil, commonerrors.Newf(commonerrors.InsufficientBalance,
			"wallet holds %s of %s, need %s", held.Amount, plan.inMint, amountIn)
	}

	userSource, _, err := sol.FindAssociatedTokenAddress(owner, plan.inMint)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to derive source token account")
	}
	userDest, _, err := sol.FindAssociatedTokenAddress(owner, plan.outMint)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to derive destination token account")
	}

	instructions, err := c.computeBudgetInstructions(ctx)
	if err != nil {
		return nil, err
	}

	createDest, err := c.createATAInstructionIfMissing(ctx, userDest, plan.outMint)
	if err != nil {
		return nil, err
	}
	if createDest != nil {
		instructions = append(instructions, createDest)
	}

	rawIn := types.RawAmount(amountIn, plan.inDecimals)
	rawMin := types.RawAmount(plan.quote.MinimumOutput, plan.outDecimals)

	instructions = append(instructions, buildSwapInstruction(
		plan.pool, owner, userSource, userDest, plan.sourceVault, plan.destVault,
		rawIn.Uint64(), rawMin.Uint64(),
	))

	sig, err := c.submitInstructions(ctx, instructions)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"dex":       types.Raydium,
		"pool":      plan.pool.id.String(),
		"signature": sig.String(),
	}).Info("Swap submitted")

	return types.NewPendingTransaction(sig.String()), nil
}

// computeBudgetInstructions builds the compute unit limit and priority fee
// instructions that lead every transaction the connector submits.
func (c *connector) computeBudgetInstructions(ctx context.Context) ([]sol.Instruction, error) {
	limitIx, err := computebudget.NewSetComputeUnitLimitInstruction(swapComputeUnits).ValidateAndBuild()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to build compute unit limit instruction")
	}

	instructions := []sol.Instruction{limitIx}

	priorityFee, err := c.getChain().PriorityFeeEstimate(ctx, nil)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to estimate priority fee, submitting without one")
		return instructions, nil
	}
	if priorityFee == 0 {
		return instructions, nil
	}

	priceIx, err := computebudget.NewSetComputeUnitPriceInstruction(priorityFee).ValidateAndBuild()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to build priority fee instruction")
	}
	return append(instructions, priceIx), nil
}

// createATAInstructionIfMissing returns an instruction creating the wallet's
// associated token account for the mint, or nil when it already exists.
func (c *connector) createATAInstructionIfMissing(ctx context.Context, ata, mint sol.PublicKey) (sol.Instruction, error) {
	_, err := c.getChain().RPC().GetAccountInfo(ctx, ata)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, rpc.ErrNotFound) {
		return nil, commonerrors.WrapNetwork(err, "failed to check token account")
	}

	owner := c.wallet.PublicKey()
	ix := associatedtokenaccount.NewCreateInstruction(owner, owner, mint).Build()
	return ix, nil
}

// submitInstructions assembles the instructions into a transaction on the
// latest blockhash, signs it and broadcasts it.
func (c *connector) submitInstructions(ctx context.Context, instructions []sol.Instruction) (sol.Signature, error) {
	blockhash, err := c.getChain().LatestBlockhash(ctx)
	if err != nil {
		return sol.Signature{}, err
	}

	tx, err := sol.NewTransaction(
		instructions,
		blockhash,
		sol.TransactionPayer(c.wallet.PublicKey()),
	)
	if err != nil {
		return sol.Signature{}, commonerrors.Wrap(commonerrors.InternalError, err, "failed to build transaction")
	}

	return c.getChain().SendTransaction(ctx, c.wallet, tx)
}
