package types

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ConnectorConfig holds the configuration for a specific DEX connector
// implementation.
//
// Fields:
// - RpcUrl: the URL for the chain's RPC endpoint.
// - Timeout: the per-network-call timeout; defaults to 30 seconds.
// - TrackedTokens: token addresses included in wallet balance aggregation.
// - RouterAddress: the swap router contract address (EVM connectors).
// - FactoryAddress: the pair factory contract address (EVM connectors).
// - WrappedNative: the wrapped native token address used for multi-hop routes.
// - AggregatorUrl: the quote aggregator base URL (Jupiter connector).
// - Pools: statically configured AMM pools (Raydium connector).
type ConnectorConfig struct {
	RpcUrl         string
	Timeout        time.Duration
	TrackedTokens  []string
	RouterAddress  string
	FactoryAddress string
	WrappedNative  string
	AggregatorUrl  string
	Pools          []PoolConfig
}

// PoolConfig describes a statically configured AMM pool.
type PoolConfig struct {
	PoolID     string
	Authority  string
	TokenA     string
	TokenB     string
	VaultA     string
	VaultB     string
	LPMint     string
	FeeTier    string
	OpenOrders string
}

// DefaultTimeout is applied when ConnectorConfig.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// CallTimeout returns the configured per-call timeout or the default.
func (c *ConnectorConfig) CallTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// ConnectionTester verifies that the wallet and the chain RPC are reachable.
type ConnectionTester interface {
	// TestConnection returns true iff the chain RPC responded and the wallet
	// address resolves on it.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	//
	// Returns:
	// - bool: true if the connection is healthy.
	// - error: a NetworkError if the RPC is unreachable.
	TestConnection(ctx context.Context) (bool, error)
}

// BalanceProvider exposes wallet and token balances.
type BalanceProvider interface {
	// GetWalletBalance returns the wallet's native balance together with the
	// balances of all tracked tokens.
	GetWalletBalance(ctx context.Context) (*WalletBalance, error)

	// GetTokenBalance returns the wallet's balance of a single token.
	// A wallet that holds none of the token yields a zero balance, not an
	// error; a token contract that does not resolve yields TokenNotFound.
	GetTokenBalance(ctx context.Context, tokenAddress string) (*TokenBalance, error)
}

// Quoter produces swap quotes.
type Quoter interface {
	// GetSwapQuote estimates the output of swapping amountIn of tokenIn for
	// tokenOut, applying the fractional slippage tolerance to derive the
	// minimum output. The route may be multi-hop.
	GetSwapQuote(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*SwapQuote, error)
}

// SwapExecutor submits swap transactions.
type SwapExecutor interface {
	// ExecuteSwap quotes and submits a swap in one call. Each call submits a
	// new transaction; the operation is not idempotent. The on-chain outcome
	// must be checked later via GetTransactionStatus.
	ExecuteSwap(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*Transaction, error)
}

// PoolReader reads liquidity pool snapshots.
type PoolReader interface {
	// GetPoolInfo returns a snapshot of the pool holding the given token
	// pair. Tokens may be passed in any order; the snapshot is normalized to
	// canonical token ordering.
	GetPoolInfo(ctx context.Context, tokenA, tokenB string) (*PoolInfo, error)
}

// LiquidityManager adds and removes pool liquidity.
type LiquidityManager interface {
	// AddLiquidity deposits amountA of tokenA and amountB of tokenB into the
	// pair's pool, tolerating the given fractional slippage on both legs.
	AddLiquidity(ctx context.Context, tokenA, tokenB string, amountA, amountB, slippageTolerance decimal.Decimal) (*Transaction, error)

	// RemoveLiquidity burns the given amount of LP tokens of the pair's pool.
	RemoveLiquidity(ctx context.Context, tokenA, tokenB string, liquidity decimal.Decimal) (*Transaction, error)
}

// TransactionWatcher resolves the current status of a submitted transaction.
// The connector performs a single lookup; polling is the caller's concern.
type TransactionWatcher interface {
	GetTransactionStatus(ctx context.Context, txHash string) (*TransactionStatus, error)
}

// GasPricer reports the chain's current gas price.
type GasPricer interface {
	// GetGasPrice returns the current gas price as a decimal in the chain's
	// native fee unit. Connectors on chains without a comparable fee model
	// fail with UnsupportedOperation; the choice is fixed per connector.
	GetGasPrice(ctx context.Context) (decimal.Decimal, error)
}

// Connector combines every capability a DEX connector must expose.
// Implementations are safe for concurrent use from many request handlers;
// the only mutable per-connector state is a serialized nonce counter.
type Connector interface {
	ConnectionTester
	BalanceProvider
	Quoter
	SwapExecutor
	PoolReader
	LiquidityManager
	TransactionWatcher
	GasPricer

	// DexName returns the canonical lowercase exchange name.
	DexName() string

	// BlockchainNetwork returns the network tag the connector settles on.
	BlockchainNetwork() Network
}
