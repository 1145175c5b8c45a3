package evm

import (
	"context"
	"sync"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"golang.org/x/sync/errgroup"
)

// GetWalletBalance returns the wallet's native balance together with the
// balances of every tracked token. Token lookups fan out concurrently.
func (c *connector) GetWalletBalance(ctx context.Context) (*types.WalletBalance, error) {
	client := c.getClient()
	if client == nil {
		return nil, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	native, err := client.BalanceAt(ctx, c.wallet, nil)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to get native balance")
	}

	balance := &types.WalletBalance{
		Address: c.wallet.Hex(),
		Native:  types.NewTokenBalance("", c.params.nativeSymbol, nativeDecimals, native),
	}

	if len(c.config.TrackedTokens) == 0 {
		return balance, nil
	}

	tokens := make([]types.TokenBalance, len(c.config.TrackedTokens))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	for i, tokenAddress := range c.config.TrackedTokens {
		i, tokenAddress := i, tokenAddress
		group.Go(func() error {
			tb, err := c.GetTokenBalance(groupCtx, tokenAddress)
			if err != nil {
				return err
			}
			mu.Lock()
			tokens[i] = *tb
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	balance.Tokens = tokens
	return balance, nil
}

// GetTokenBalance returns the wallet's balance of a single token. A wallet
// holding none of the token yields a zero balance.
func (c *connector) GetTokenBalance(ctx context.Context, tokenAddress string) (*types.TokenBalance, error) {
	token, err := parseTokenAddress(tokenAddress)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	meta, err := c.fetchTokenMeta(ctx, token)
	if err != nil {
		return nil, err
	}

	raw, err := c.erc20BalanceOf(ctx, token, c.wallet)
	if err != nil {
		return nil, err
	}

	tb := types.NewTokenBalance(token.Hex(), meta.symbol, meta.decimals, raw)
	return &tb, nil
}
