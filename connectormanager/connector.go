package connectormanager

import (
	"context"
	"sync"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/shopspring/decimal"
)

// Connector assembles a full connector from individual capability
// implementations with thread-safe access to each. A capability left nil
// yields UnsupportedOperation instead of a panic, which lets partial
// integrations expose only the operations they actually support.
type Connector struct {
	dex     types.DEX
	network types.Network

	tester    types.ConnectionTester
	balances  types.BalanceProvider
	quoter    types.Quoter
	swapper   types.SwapExecutor
	pools     types.PoolReader
	liquidity types.LiquidityManager
	watcher   types.TransactionWatcher
	gas       types.GasPricer

	// Mutexes for thread-safe access to capabilities.
	testerMutex    sync.RWMutex
	balancesMutex  sync.RWMutex
	quoterMutex    sync.RWMutex
	swapperMutex   sync.RWMutex
	poolsMutex     sync.RWMutex
	liquidityMutex sync.RWMutex
	watcherMutex   sync.RWMutex
	gasMutex       sync.RWMutex
}

// NewConnector creates a composite connector from capability implementations.
// Any capability may be nil.
//
// Parameters:
// - dex: the exchange the capabilities belong to.
// - network: the network the exchange settles on.
// - tester: the connection tester implementation.
// - balances: the balance provider implementation.
// - quoter: the quoter implementation.
// - swapper: the swap executor implementation.
// - pools: the pool reader implementation.
// - liquidity: the liquidity manager implementation.
// - watcher: the transaction watcher implementation.
// - gas: the gas pricer implementation.
//
// Returns:
// - *Connector: a new composite connector instance.
func NewConnector(
	dex types.DEX,
	network types.Network,
	tester types.ConnectionTester,
	balances types.BalanceProvider,
	quoter types.Quoter,
	swapper types.SwapExecutor,
	pools types.PoolReader,
	liquidity types.LiquidityManager,
	watcher types.TransactionWatcher,
	gas types.GasPricer,
) *Connector {
	return &Connector{
		dex:       dex,
		network:   network,
		tester:    tester,
		balances:  balances,
		quoter:    quoter,
		swapper:   swapper,
		pools:     pools,
		liquidity: liquidity,
		watcher:   watcher,
		gas:       gas,
	}
}

// FromConnector wraps a full connector, exposing every capability it
// implements through the composite form.
func FromConnector(c types.Connector) *Connector {
	return NewConnector(
		types.DEX(c.DexName()),
		c.BlockchainNetwork(),
		c, c, c, c, c, c, c, c,
	)
}

func (c *Connector) notSupported(operation string) error {
	return commonerrors.Newf(commonerrors.UnsupportedOperation, "%s does not support %s", c.dex, operation)
}

// DexName returns the canonical lowercase exchange name.
func (c *Connector) DexName() string {
	return c.dex.String()
}

// BlockchainNetwork returns the network tag the connector settles on.
func (c *Connector) BlockchainNetwork() types.Network {
	return c.network
}

// TestConnection verifies chain reachability with thread-safe access to the
// tester capability.
func (c *Connector) TestConnection(ctx context.Context) (bool, error) {
	c.testerMutex.RLock()
	tester := c.tester
	c.testerMutex.RUnlock()

	if tester == nil {
		return false, c.notSupported("connection testing")
	}
	return tester.TestConnection(ctx)
}

// GetWalletBalance returns wallet balances with thread-safe access to the
// balance capability.
func (c *Connector) GetWalletBalance(ctx context.Context) (*types.WalletBalance, error) {
	c.balancesMutex.RLock()
	balances := c.balances
	c.balancesMutex.RUnlock()

	if balances == nil {
		return nil, c.notSupported("balance reads")
	}
	return balances.GetWalletBalance(ctx)
}

// GetTokenBalance returns a single token balance with thread-safe access to
// the balance capability.
func (c *Connector) GetTokenBalance(ctx context.Context, tokenAddress string) (*types.TokenBalance, error) {
	c.balancesMutex.RLock()
	balances := c.balances
	c.balancesMutex.RUnlock()

	if balances == nil {
		return nil, c.notSupported("balance reads")
	}
	return balances.GetTokenBalance(ctx, tokenAddress)
}

// GetSwapQuote produces a quote with thread-safe access to the quoter
// capability.
func (c *Connector) GetSwapQuote(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.SwapQuote, error) {
	c.quoterMutex.RLock()
	quoter := c.quoter
	c.quoterMutex.RUnlock()

	if quoter == nil {
		return nil, c.notSupported("quoting")
	}
	return quoter.GetSwapQuote(ctx, tokenIn, tokenOut, amountIn, slippageTolerance)
}

// ExecuteSwap submits a swap with thread-safe access to the swap capability.
func (c *Connector) ExecuteSwap(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.Transaction, error) {
	c.swapperMutex.RLock()
	swapper := c.swapper
	c.swapperMutex.RUnlock()

	if swapper == nil {
		return nil, c.notSupported("swaps")
	}
	return swapper.ExecuteSwap(ctx, tokenIn, tokenOut, amountIn, slippageTolerance)
}

// GetPoolInfo reads a pool snapshot with thread-safe access to the pool
// capability.
func (c *Connector) GetPoolInfo(ctx context.Context, tokenA, tokenB string) (*types.PoolInfo, error) {
	c.poolsMutex.RLock()
	pools := c.pools
	c.poolsMutex.RUnlock()

	if pools == nil {
		return nil, c.notSupported("pool reads")
	}
	return pools.GetPoolInfo(ctx, tokenA, tokenB)
}

// AddLiquidity deposits liquidity with thread-safe access to the liquidity
// capability.
func (c *Connector) AddLiquidity(ctx context.Context, tokenA, tokenB string, amountA, amountB, slippageTolerance decimal.Decimal) (*types.Transaction, error) {
	c.liquidityMutex.RLock()
	liquidity := c.liquidity
	c.liquidityMutex.RUnlock()

	if liquidity == nil {
		return nil, c.notSupported("liquidity management")
	}
	return liquidity.AddLiquidity(ctx, tokenA, tokenB, amountA, amountB, slippageTolerance)
}

// RemoveLiquidity withdraws liquidity with thread-safe access to the
// liquidity capability.
func (c *Connector) RemoveLiquidity(ctx context.Context, tokenA, tokenB string, liquidity decimal.Decimal) (*types.Transaction, error) {
	c.liquidityMutex.RLock()
	manager := c.liquidity
	c.liquidityMutex.RUnlock()

	if manager == nil {
		return nil, c.notSupported("liquidity management")
	}
	return manager.RemoveLiquidity(ctx, tokenA, tokenB, liquidity)
}

// GetTransactionStatus resolves a transaction's status with thread-safe
// access to the watcher capability.
func (c *Connector) GetTransactionStatus(ctx context.Context, txHash string) (*types.TransactionStatus, error) {
	c.watcherMutex.RLock()
	watcher := c.watcher
	c.watcherMutex.RUnlock()

	if watcher == nil {
		return nil, c.notSupported("transaction status lookups")
	}
	return watcher.GetTransactionStatus(ctx, txHash)
}

// GetGasPrice reports the chain's gas price with thread-safe access to the
// gas capability.
func (c *Connector) GetGasPrice(ctx context.Context) (decimal.Decimal, error) {
	c.gasMutex.RLock()
	gas := c.gas
	c.gasMutex.RUnlock()

	if gas == nil {
		return decimal.Zero, c.notSupported("gas price reads")
	}
	return gas.GetGasPrice(ctx)
}

var _ types.Connector = (*Connector)(nil)
