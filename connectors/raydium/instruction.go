package raydium

import (
	"encoding/binary"

	sol "github.com/gagliardetto/solana-go"
)

// ammProgramID is the Raydium liquidity pool v4 program.
var ammProgramID = sol.MPK("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")

// AMM v4 instruction discriminators.
const (
	depositInstruction    uint8 = 3
	withdrawInstruction   uint8 = 4
	swapBaseInInstruction uint8 = 9
)

const (
	// baseFeeLamports is the flat signature fee assumed for fee estimates.
	baseFeeLamports = 5000
	// swapComputeUnits is the compute budget requested for swap and
	// liquidity transactions.
	swapComputeUnits = 300_000
)

// buildSwapInstruction builds an AMM v4 swap_base_in instruction. Amounts are
// in the mints' smallest units.
func buildSwapInstruction(p *pool, owner, userSource, userDest, sourceVault, destVault sol.PublicKey, amountIn, minAmountOut uint64) sol.Instruction {
	data := make([]byte, 17)
	data[0] = swapBaseInInstruction
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minAmountOut)

	metas := sol.AccountMetaSlice{
		sol.NewAccountMeta(sol.TokenProgramID, false, false),
		sol.NewAccountMeta(p.id, true, false),
		sol.NewAccountMeta(p.authority, false, false),
		sol.NewAccountMeta(p.openOrders, true, false),
		sol.NewAccountMeta(sourceVault, true, false),
		sol.NewAccountMeta(destVault, true, false),
		sol.NewAccountMeta(userSource, true, false),
		sol.NewAccountMeta(userDest, true, false),
		sol.NewAccountMeta(owner, false, true),
	}

	return sol.NewInstruction(ammProgramID, metas, data)
}

// buildDepositInstruction builds an AMM v4 deposit instruction contributing
// both legs to the pool.
func buildDepositInstruction(p *pool, owner, userBase, userQuote, userLP sol.PublicKey, maxBaseAmount, maxQuoteAmount uint64) sol.Instruction {
	data := make([]byte, 17)
	data[0] = depositInstruction
	binary.LittleEndian.PutUint64(data[1:9], maxBaseAmount)
	binary.LittleEndian.PutUint64(data[9:17], maxQuoteAmount)

	metas := sol.AccountMetaSlice{
		sol.NewAccountMeta(sol.TokenProgramID, false, false),
		sol.NewAccountMeta(p.id, true, false),
		sol.NewAccountMeta(p.authority, false, false),
		sol.NewAccountMeta(p.openOrders, false, false),
		sol.NewAccountMeta(p.lpMint, true, false),
		sol.NewAccountMeta(p.vaultA, true, false),
		sol.NewAccountMeta(p.vaultB, true, false),
		sol.NewAccountMeta(userBase, true, false),
		sol.NewAccountMeta(userQuote, true, false),
		sol.NewAccountMeta(userLP, true, false),
		sol.NewAccountMeta(owner, false, true),
	}

	return sol.NewInstruction(ammProgramID, metas, data)
}

// buildWithdrawInstruction builds an AMM v4 withdraw instruction burning LP
// tokens for both legs.
func buildWithdrawInstruction(p *pool, owner, userBase, userQuote, userLP sol.PublicKey, lpAmount uint64) sol.Instruction {
	data := make([]byte, 9)
	data[0] = withdrawInstruction
	binary.LittleEndian.PutUint64(data[1:9], lpAmount)

	metas := sol.AccountMetaSlice{
		sol.NewAccountMeta(sol.TokenProgramID, false, false),
		sol.NewAccountMeta(p.id, true, false),
		sol.NewAccountMeta(p.authority, false, false),
		sol.NewAccountMeta(p.openOrders, true, false),
		sol.NewAccountMeta(p.lpMint, true, false),
		sol.NewAccountMeta(p.vaultA, true, false),
		sol.NewAccountMeta(p.vaultB, true, false),
		sol.NewAccountMeta(userLP, true, false),
		sol.NewAccountMeta(userBase, true, false),
		sol.NewAccountMeta(userQuote, true, false),
		sol.NewAccountMeta(owner, false, true),
	}

	return sol.NewInstruction(ammProgramID, metas, data)
}
