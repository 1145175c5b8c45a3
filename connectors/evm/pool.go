package evm

import (
	"context"
	"math/big"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/ethereum/go-ethereum/common"
)

// GetPoolInfo returns a snapshot of the pair pool for two tokens. Tokens may
// be passed in either order; the snapshot is normalized so token0
// lexicographically precedes token1.
func (c *connector) GetPoolInfo(ctx context.Context, tokenA, tokenB string) (*types.PoolInfo, error) {
	a, err := parseTokenAddress(tokenA)
	if err != nil {
		return nil, err
	}
	b, err := parseTokenAddress(tokenB)
	if err != nil {
		return nil, err
	}
	if a == b {
		return nil, commonerrors.New(commonerrors.PoolNotFound, "pool tokens must be distinct")
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

	_, _, _, pairABI, err := contractABIs()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse pair ABI")
	}

	// The pair contract reports reserves in its own token0/token1 order.
	values, err := c.callContract(ctx, pair, pairABI, "token0")
	if err != nil {
		return nil, err
	}
	token0, ok := values[0].(common.Address)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "unexpected token0 type")
	}

	values, err = c.callContract(ctx, pair, pairABI, "token1")
	if err != nil {
		return nil, err
	}
	token1, ok := values[0].(common.Address)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "unexpected token1 type")
	}

	values, err = c.callContract(ctx, pair, pairABI, "getReserves")
	if err != nil {
		return nil, err
	}
	reserve0, ok := values[0].(*big.Int)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "unexpected reserve0 type")
	}
	reserve1, ok := values[1].(*big.Int)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "unexpected reserve1 type")
	}

	values, err = c.callContract(ctx, pair, pairABI, "totalSupply")
	if err != nil {
		return nil, err
	}
	totalSupply, ok := values[0].(*big.Int)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "unexpected totalSupply type")
	}

	meta0, err := c.fetchTokenMeta(ctx, token0)
	if err != nil {
		return nil, err
	}
	meta1, err := c.fetchTokenMeta(ctx, token1)
	if err != nil {
		return nil, err
	}

	info := &types.PoolInfo{
		PoolID:         pair.Hex(),
		Token0:         token0.Hex(),
		Token1:         token1.Hex(),
		Reserve0:       types.HumanAmount(reserve0, meta0.decimals),
		Reserve1:       types.HumanAmount(reserve1, meta1.decimals),
		TotalLiquidity: types.HumanAmount(totalSupply, nativeDecimals),
		FeeTier:        c.params.feeTier,
	}

	// Normalize to canonical ordering regardless of the pair contract's own.
	if t0, _ := types.SortTokenPair(info.Token0, info.Token1); t0 != info.Token0 {
		info.Token0, info.Token1 = info.Token1, info.Token0
		info.Reserve0, info.Reserve1 = info.Reserve1, info.Reserve0
	}

	return info, nil
}
