package evm

import (
	"context"
	"math/big"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// callContract packs a read-only contract call, executes it and unpacks the
// results.
func (c *connector) callContract(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	client := c.getClient()
	if client == nil {
		return nil, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to pack "+method+" data")
	}

	result, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to call "+method)
	}

	values, err := contractABI.Unpack(method, result)
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.ContractError, err, "failed to unpack "+method+" result")
	}

	return values, nil
}

// fetchTokenMeta loads immutable ERC20 metadata, serving repeat lookups from
// an in-memory cache. A token contract with no code yields TokenNotFound.
func (c *connector) fetchTokenMeta(ctx context.Context, token common.Address) (tokenMeta, error) {
	c.tokenMetaMutex.RLock()
	meta, ok := c.tokenMeta[token]
	c.tokenMetaMutex.RUnlock()
	if ok {
		return meta, nil
	}

	client := c.getClient()
	if client == nil {
		return tokenMeta{}, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	code, err := client.CodeAt(ctx, token, nil)
	if err != nil {
		return tokenMeta{}, commonerrors.WrapNetwork(err, "failed to check token contract")
	}
	if len(code) == 0 {
		return tokenMeta{}, commonerrors.Newf(commonerrors.TokenNotFound, "no contract at %s", token.Hex())
	}

	erc20, _, _, _, err := contractABIs()
	if err != nil {
		return tokenMeta{}, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse token ABI")
	}

	values, err := c.callContract(ctx, token, erc20, "symbol")
	if err != nil {
		return tokenMeta{}, err
	}
	symbol, ok := values[0].(string)
	if !ok {
		return tokenMeta{}, commonerrors.New(commonerrors.ContractError, "unexpected symbol type")
	}

	values, err = c.callContract(ctx, token, erc20, "decimals")
	if err != nil {
		return tokenMeta{}, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return tokenMeta{}, commonerrors.New(commonerrors.ContractError, "unexpected decimals type")
	}

	meta = tokenMeta{symbol: symbol, decimals: decimals}

	c.tokenMetaMutex.Lock()
	c.tokenMeta[token] = meta
	c.tokenMetaMutex.Unlock()

	return meta, nil
}

// erc20BalanceOf returns the raw token balance of an owner.
func (c *connector) erc20BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	erc20, _, _, _, err := contractABIs()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse token ABI")
	}

	values, err := c.callContract(ctx, token, erc20, "balanceOf", owner)
	if err != nil {
		return nil, err
	}

	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "unexpected balanceOf type")
	}
	return balance, nil
}

// erc20Allowance returns the raw allowance granted by owner to spender.
func (c *connector) erc20Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	erc20, _, _, _, err := contractABIs()
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to parse token ABI")
	}

	values, err := c.callContract(ctx, token, erc20, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}

	allowance, ok := values[0].(*big.Int)
	if !ok {
		return nil, commonerrors.New(commonerrors.ContractError, "unexpected allowance type")
	}
	return allowance, nil
}

// parseTokenAddress validates a hex token address.
func parseTokenAddress(tokenAddress string) (common.Address, error) {
	if tokenAddress == "" {
		return common.Address{}, commonerrors.New(commonerrors.TokenNotFound, "token address is empty")
	}
	if !common.IsHexAddress(tokenAddress) {
		return common.Address{}, commonerrors.Wrap(
			commonerrors.TokenNotFound,
			errors.Errorf("invalid address %q", tokenAddress),
			"token address does not parse",
		)
	}
	return common.HexToAddress(tokenAddress), nil
}
