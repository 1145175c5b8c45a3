package connectormanager

import (
	"context"
	"testing"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConnector is a full in-memory connector used to exercise composition
// and registry lifecycle.
type fakeConnector struct {
	dex    types.DEX
	closed bool
	calls  []string
}

func (f *fakeConnector) record(op string) { f.calls = append(f.calls, op) }

func (f *fakeConnector) DexName() string                  { return f.dex.String() }
func (f *fakeConnector) BlockchainNetwork() types.Network { return types.Ethereum }
func (f *fakeConnector) Close()                           { f.closed = true }

func (f *fakeConnector) TestConnection(context.Context) (bool, error) {
	f.record("TestConnection")
	return true, nil
}

func (f *fakeConnector) GetWalletBalance(context.Context) (*types.WalletBalance, error) {
	f.record("GetWalletBalance")
	return &types.WalletBalance{}, nil
}

func (f *fakeConnector) GetTokenBalance(context.Context, string) (*types.TokenBalance, error) {
	f.record("GetTokenBalance")
	return &types.TokenBalance{}, nil
}

func (f *fakeConnector) GetSwapQuote(context.Context, string, string, decimal.Decimal, decimal.Decimal) (*types.SwapQuote, error) {
	f.record("GetSwapQuote")
	return &types.SwapQuote{}, nil
}

func (f *fakeConnector) ExecuteSwap(context.Context, string, string, decimal.Decimal, decimal.Decimal) (*types.Transaction, error) {
	f.record("ExecuteSwap")
	return &types.Transaction{}, nil
}

func (f *fakeConnector) GetPoolInfo(context.Context, string, string) (*types.PoolInfo, error) {
	f.record("GetPoolInfo")
	return &types.PoolInfo{}, nil
}

func (f *fakeConnector) AddLiquidity(context.Context, string, string, decimal.Decimal, decimal.Decimal, decimal.Decimal) (*types.Transaction, error) {
	f.record("AddLiquidity")
	return &types.Transaction{}, nil
}

func (f *fakeConnector) RemoveLiquidity(context.Context, string, string, decimal.Decimal) (*types.Transaction, error) {
	f.record("RemoveLiquidity")
	return &types.Transaction{}, nil
}

func (f *fakeConnector) GetTransactionStatus(context.Context, string) (*types.TransactionStatus, error) {
	f.record("GetTransactionStatus")
	return &types.TransactionStatus{}, nil
}

func (f *fakeConnector) GetGasPrice(context.Context) (decimal.Decimal, error) {
	f.record("GetGasPrice")
	return decimal.NewFromInt(1), nil
}

var _ types.Connector = (*fakeConnector)(nil)

func TestCompositeNilCapabilities(t *testing.T) {
	ctx := context.Background()
	one := decimal.NewFromInt(1)

	// Only the quoter is wired.
	fake := &fakeConnector{dex: types.Jupiter}
	c := NewConnector(types.Jupiter, types.Solana, nil, nil, fake, nil, nil, nil, nil, nil)

	_, err := c.GetSwapQuote(ctx, "a", "b", one, decimal.Zero)
	require.NoError(t, err)

	for name, call := range map[string]func() error{
		"TestConnection":       func() error { _, err := c.TestConnection(ctx); return err },
		"GetWalletBalance":     func() error { _, err := c.GetWalletBalance(ctx); return err },
		"GetTokenBalance":      func() error { _, err := c.GetTokenBalance(ctx, "a"); return err },
		"ExecuteSwap":          func() error { _, err := c.ExecuteSwap(ctx, "a", "b", one, decimal.Zero); return err },
		"GetPoolInfo":          func() error { _, err := c.GetPoolInfo(ctx, "a", "b"); return err },
		"AddLiquidity":         func() error { _, err := c.AddLiquidity(ctx, "a", "b", one, one, decimal.Zero); return err },
		"RemoveLiquidity":      func() error { _, err := c.RemoveLiquidity(ctx, "a", "b", one); return err },
		"GetTransactionStatus": func() error { _, err := c.GetTransactionStatus(ctx, "0xabc"); return err },
		"GetGasPrice":          func() error { _, err := c.GetGasPrice(ctx); return err },
	} {
		err := call()
		require.Error(t, err, name)
		assert.Equal(t, commonerrors.UnsupportedOperation, commonerrors.KindOf(err), name)
	}
}

func TestFromConnectorDelegatesEverything(t *testing.T) {
	ctx := context.Background()
	one := decimal.NewFromInt(1)

	fake := &fakeConnector{dex: types.Uniswap}
	c := FromConnector(fake)

	assert.Equal(t, "uniswap", c.DexName())
	assert.Equal(t, types.Ethereum, c.BlockchainNetwork())

	_, err := c.TestConnection(ctx)
	require.NoError(t, err)
	_, err = c.GetWalletBalance(ctx)
	require.NoError(t, err)
	_, err = c.GetSwapQuote(ctx, "a", "b", one, decimal.Zero)
	require.NoError(t, err)
	_, err = c.ExecuteSwap(ctx, "a", "b", one, decimal.Zero)
	require.NoError(t, err)
	_, err = c.GetGasPrice(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"TestConnection",
		"GetWalletBalance",
		"GetSwapQuote",
		"ExecuteSwap",
		"GetGasPrice",
	}, fake.calls)
}
