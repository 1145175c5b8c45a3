package types

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenBalance represents a wallet's holding of a single token.
//
// Fields:
// - Address: the token contract address (mint address on Solana).
// - Symbol: the token symbol as reported by the token contract.
// - Decimals: the number of decimal places of the token.
// - RawAmount: the balance in the token's smallest unit.
// - Amount: the balance scaled by 10^-Decimals, exact.
type TokenBalance struct {
	Address   string
	Symbol    string
	Decimals  uint8
	RawAmount *big.Int
	Amount    decimal.Decimal
}

// NewTokenBalance builds a TokenBalance from a raw amount, deriving the
// human-readable amount with an exact decimal shift.
func NewTokenBalance(address, symbol string, decimals uint8, raw *big.Int) TokenBalance {
	return TokenBalance{
		Address:   address,
		Symbol:    symbol,
		Decimals:  decimals,
		RawAmount: raw,
		Amount:    HumanAmount(raw, decimals),
	}
}

// HumanAmount converts a raw smallest-unit amount to its decimal
// representation. The conversion is exact: HumanAmount(r, d) * 10^d == r.
func HumanAmount(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// RawAmount converts a decimal amount back to the token's smallest unit,
// truncating any precision below one smallest unit.
func RawAmount(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}

// WalletBalance aggregates a wallet's native balance with its token balances.
type WalletBalance struct {
	Address string
	Native  TokenBalance
	Tokens  []TokenBalance
}
