package types

import "github.com/shopspring/decimal"

// PoolInfo is a consistent snapshot of a liquidity pool at some chain height.
// There is no freshness guarantee beyond the moment of fetch.
//
// Fields:
// - PoolID: the pool's on-chain identifier (pair contract or AMM account).
// - Token0: the address of the first pool token after canonical ordering.
// - Token1: the address of the second pool token after canonical ordering.
// - Reserve0: reserve of Token0, human units.
// - Reserve1: reserve of Token1, human units.
// - TotalLiquidity: total LP token supply, human units.
// - FeeTier: the pool fee as a fraction (0.003 for a 0.3% pool).
type PoolInfo struct {
	PoolID         string
	Token0         string
	Token1         string
	Reserve0       decimal.Decimal
	Reserve1       decimal.Decimal
	TotalLiquidity decimal.Decimal
	FeeTier        decimal.Decimal
}

// SortTokenPair normalizes a token pair into canonical order so that token0
// lexicographically precedes token1. Callers may pass tokens in any order and
// still address the same pool.
func SortTokenPair(a, b string) (token0, token1 string) {
	if a > b {
		return b, a
	}
	return a, b
}
