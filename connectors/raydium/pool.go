package raydium

import (
	"context"
	"math/big"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// defaultFeeTier is the standard Raydium AMM trade fee.
var defaultFeeTier = decimal.RequireFromString("0.0025")

// pool is a statically configured Raydium AMM pool with its account set
// resolved to public keys.
type pool struct {
	id         sol.PublicKey
	authority  sol.PublicKey
	mintA      sol.PublicKey
	mintB      sol.PublicKey
	vaultA     sol.PublicKey
	vaultB     sol.PublicKey
	lpMint     sol.PublicKey
	openOrders sol.PublicKey
	feeTier    decimal.Decimal
}

// buildPoolTable resolves the configured pools. Pool lookups are keyed by the
// unordered token pair.
func buildPoolTable(configs []types.PoolConfig) (map[[2]string]*pool, error) {
	table := make(map[[2]string]*pool, len(configs))
	for _, cfg := range configs {
		p, err := parsePoolConfig(cfg)
		if err != nil {
			return nil, err
		}
		a, b := types.SortTokenPair(p.mintA.String(), p.mintB.String())
		table[[2]string{a, b}] = p
	}
	return table, nil
}

func parsePoolConfig(cfg types.PoolConfig) (*pool, error) {
	p := &pool{feeTier: defaultFeeTier}
	if cfg.FeeTier != "" {
		fee, err := decimal.NewFromString(cfg.FeeTier)
		if err != nil {
			return nil, commonerrors.Wrapf(commonerrors.InternalError, err, "pool %s has a malformed fee tier", cfg.PoolID)
		}
		p.feeTier = fee
	}

	for _, field := range []struct {
		value string
		dst   *sol.PublicKey
		name  string
	}{
		{cfg.PoolID, &p.id, "pool id"},
		{cfg.Authority, &p.authority, "authority"},
		{cfg.TokenA, &p.mintA, "token A mint"},
		{cfg.TokenB, &p.mintB, "token B mint"},
		{cfg.VaultA, &p.vaultA, "vault A"},
		{cfg.VaultB, &p.vaultB, "vault B"},
		{cfg.LPMint, &p.lpMint, "LP mint"},
		{cfg.OpenOrders, &p.openOrders, "open orders"},
	} {
		key, err := sol.PublicKeyFromBase58(field.value)
		if err != nil {
			return nil, commonerrors.Wrapf(commonerrors.InternalError, err, "pool %s has a malformed %s", cfg.PoolID, field.name)
		}
		*field.dst = key
	}
	return p, nil
}

// poolFor looks up the configured pool holding the token pair, in either
// order.
func (c *connector) poolFor(tokenA, tokenB string) (*pool, error) {
	a, b := types.SortTokenPair(tokenA, tokenB)
	p, ok := c.pools[[2]string{a, b}]
	if !ok {
		return nil, commonerrors.Newf(commonerrors.PoolNotFound, "no configured pool holds the pair %s/%s", tokenA, tokenB)
	}
	return p, nil
}

// vaultReserve reads a pool vault's token balance.
func (c *connector) vaultReserve(ctx context.Context, vault sol.PublicKey) (*big.Int, error) {
	balance, err := c.getChain().RPC().GetTokenAccountBalance(ctx, vault, rpc.CommitmentFinalized)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to read pool vault balance")
	}
	raw, ok := new(big.Int).SetString(balance.Value.Amount, 10)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "failed to parse pool vault balance")
	}
	return raw, nil
}

// poolReserves reads both vault balances for a pool, keyed by mint.
func (c *connector) poolReserves(ctx context.Context, p *pool) (reserveA, reserveB *big.Int, err error) {
	reserveA, err = c.vaultReserve(ctx, p.vaultA)
	if err != nil {
		return nil, nil, err
	}
	reserveB, err = c.vaultReserve(ctx, p.vaultB)
	if err != nil {
		return nil, nil, err
	}
	return reserveA, reserveB, nil
}

// GetPoolInfo reads a snapshot of the configured pool holding the token pair.
// The snapshot is normalized to canonical token ordering regardless of the
// pool's own base/quote orientation.
func (c *connector) GetPoolInfo(ctx context.Context, tokenA, tokenB string) (*types.PoolInfo, error) {
	p, err := c.poolFor(tokenA, tokenB)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	rawA, rawB, err := c.poolReserves(ctx, p)
	if err != nil {
		return nil, err
	}

	decimalsA, err := c.getChain().MintDecimals(ctx, p.mintA)
	if err != nil {
		return nil, err
	}
	decimalsB, err := c.getChain().MintDecimals(ctx, p.mintB)
	if err != nil {
		return nil, err
	}

	supply, err := c.getChain().RPC().GetTokenSupply(ctx, p.lpMint, rpc.CommitmentFinalized)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to read LP mint supply")
	}
	rawSupply, ok := new(big.Int).SetString(supply.Value.Amount, 10)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "failed to parse LP mint supply")
	}

	info := &types.PoolInfo{
		PoolID:         p.id.String(),
		Token0:         p.mintA.String(),
		Token1:         p.mintB.String(),
		Reserve0:       types.HumanAmount(rawA, decimalsA),
		Reserve1:       types.HumanAmount(rawB, decimalsB),
		TotalLiquidity: types.HumanAmount(rawSupply, supply.Value.Decimals),
		FeeTier:        p.feeTier,
	}

	// Normalize to canonical ordering.
	if first, _ := types.SortTokenPair(info.Token0, info.Token1); first != info.Token0 {
		info.Token0, info.Token1 = info.Token1, info.Token0
		info.Reserve0, info.Reserve1 = info.Reserve1, info.Reserve0
	}
	return info, nil
}
