package jupiter

import (
	"context"
	"math/big"
	"sync"
	"time"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/VelaTrade/dex-lib/connectionmonitor"
	solchain "github.com/VelaTrade/dex-lib/connectors/solana"
	sol "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// solDecimals is the decimal count of native SOL.
	solDecimals = 9
	// baseFeeLamports is the flat signature fee assumed for fee estimates.
	baseFeeLamports = 5000
	// quoteTTL bounds how long an aggregator quote may be acted on.
	quoteTTL = 30 * time.Second
)

// connector implements the Jupiter aggregator connector. Routing is fully
// delegated to the aggregator's quote endpoint; the connector signs and
// submits the transactions the aggregator builds. Jupiter is Solana-only.
type connector struct {
	config *types.ConnectorConfig
	logger *logrus.Logger
	wallet *solchain.Wallet
	api    *apiClient

	chainMutex sync.RWMutex
	chain      *solchain.Client

	monitorMutex sync.RWMutex
	monitor      connectionmonitor.ConnectionMonitor
}

// NewConnector creates a Jupiter connector.
//
// Parameters:
// - ctx: the context for managing construction.
// - creds: the wallet credentials; base58 private key.
// - config: the connector configuration.
// - logger: the logger for logging events.
//
// Returns:
// - types.Connector: a new Jupiter connector instance.
// - error: a categorized error if construction fails.
func NewConnector(
	ctx context.Context,
	creds types.WalletCredentials,
	config *types.ConnectorConfig,
	logger *logrus.Logger,
) (types.Connector, error) {
	wallet, err := solchain.NewWallet(creds)
	if err != nil {
		return nil, err
	}

	c := &connector{
		config: config,
		logger: logger,
		wallet: wallet,
		api:    newAPIClient(config.AggregatorUrl, config.CallTimeout()),
		chain:  solchain.NewClient(config.RpcUrl, logger),
	}

	monitor := connectionmonitor.NewConnectionMonitor(c, logger, types.Jupiter.String())
	if err := monitor.Start(ctx); err != nil {
		return nil, commonerrors.Wrap(commonerrors.InternalError, err, "failed to start connection monitor")
	}

	c.monitorMutex.Lock()
	c.monitor = monitor
	c.monitorMutex.Unlock()

	return c, nil
}

// Close stops the connection monitor.
func (c *connector) Close() {
	c.monitorMutex.Lock()
	if c.monitor != nil {
		c.monitor.Stop()
		c.monitor = nil
	}
	c.monitorMutex.Unlock()
}

// DexName returns the canonical lowercase exchange name.
func (c *connector) DexName() string {
	return types.Jupiter.String()
}

// BlockchainNetwork returns the network tag the connector settles on.
func (c *connector) BlockchainNetwork() types.Network {
	return types.Solana
}

func (c *connector) getChain() *solchain.Client {
	c.chainMutex.RLock()
	defer c.chainMutex.RUnlock()
	return c.chain
}

// CheckConnection implements connectionmonitor.RPCClient.
func (c *connector) CheckConnection(ctx context.Context) error {
	return c.getChain().CheckHealth(ctx)
}

// Reconnect implements connectionmonitor.RPCClient by recreating the RPC
// client.
func (c *connector) Reconnect(_ context.Context) error {
	c.chainMutex.Lock()
	c.chain = solchain.NewClient(c.config.RpcUrl, c.logger)
	c.chainMutex.Unlock()
	return nil
}

func (c *connector) callTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.config.CallTimeout())
}

// TestConnection returns true iff the RPC node is healthy and the wallet
// resolves on it.
func (c *connector) TestConnection(ctx context.Context) (bool, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	if err := c.getChain().CheckHealth(ctx); err != nil {
		return false, err
	}
	if _, err := c.getChain().NativeBalance(ctx, c.wallet.PublicKey()); err != nil {
		return false, err
	}
	return true, nil
}

// GetWalletBalance returns the wallet's SOL balance together with every
// tracked SPL token balance.
func (c *connector) GetWalletBalance(ctx context.Context) (*types.WalletBalance, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	native, err := c.getChain().NativeBalance(ctx, c.wallet.PublicKey())
	if err != nil {
		return nil, err
	}

	balance := &types.WalletBalance{
		Address: c.wallet.PublicKey().String(),
		Native:  types.NewTokenBalance("", "SOL", solDecimals, native),
	}

	if len(c.config.TrackedTokens) == 0 {
		return balance, nil
	}

	tokens := make([]types.TokenBalance, len(c.config.TrackedTokens))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	for i, mint := range c.config.TrackedTokens {
		i, mint := i, mint
		group.Go(func() error {
			tb, err := c.GetTokenBalance(groupCtx, mint)
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

// GetTokenBalance returns the wallet's balance of a single SPL token.
func (c *connector) GetTokenBalance(ctx context.Context, tokenAddress string) (*types.TokenBalance, error) {
	mint, err := parseMint(tokenAddress)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	return c.getChain().TokenBalance(ctx, c.wallet.PublicKey(), mint)
}

// GetSwapQuote delegates route discovery to the aggregator and converts the
// response into the library's quote shape.
func (c *connector) GetSwapQuote(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.SwapQuote, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	quote, _, err := c.fetchQuote(ctx, tokenIn, tokenOut, amountIn, slippageTolerance)
	return quote, err
}

// fetchQuote is the aggregator quote path shared by GetSwapQuote and
// ExecuteSwap.
func (c *connector) fetchQuote(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.SwapQuote, *quoteResponse, error) {
	if err := validateSwapInput(tokenIn, tokenOut, amountIn, slippageTolerance); err != nil {
		return nil, nil, err
	}

	inMint, err := parseMint(tokenIn)
	if err != nil {
		return nil, nil, err
	}
	outMint, err := parseMint(tokenOut)
	if err != nil {
		return nil, nil, err
	}

	inDecimals, err := c.getChain().MintDecimals(ctx, inMint)
	if err != nil {
		return nil, nil, err
	}
	outDecimals, err := c.getChain().MintDecimals(ctx, outMint)
	if err != nil {
		return nil, nil, err
	}

	rawIn := types.RawAmount(amountIn, inDecimals)
	slippageBps := int(slippageTolerance.Mul(decimal.NewFromInt(10_000)).IntPart())

	raw, err := c.api.getQuote(ctx, inMint.String(), outMint.String(), rawIn.Uint64(), slippageBps)
	if err != nil {
		return nil, nil, err
	}

	rawOut, ok := new(big.Int).SetString(raw.OutAmount, 10)
	if !ok {
		return nil, nil, commonerrors.New(commonerrors.ContractError, "failed to parse aggregator out amount")
	}
	expected := types.HumanAmount(rawOut, outDecimals)

	route := make([]string, 0, len(raw.RoutePlan)+1)
	route = append(route, inMint.String())
	for _, step := range raw.RoutePlan {
		route = append(route, step.SwapInfo.OutputMint)
	}

	quote := &types.SwapQuote{
		InputToken:     inMint.String(),
		OutputToken:    outMint.String(),
		InputAmount:    amountIn,
		ExpectedOutput: expected,
		MinimumOutput:  types.MinimumOutput(expected, slippageTolerance),
		Price:          expected.DivRound(amountIn, 28),
		EstimatedFee:   types.HumanAmount(big.NewInt(baseFeeLamports), solDecimals),
		Route:          route,
		ExpiresAt:      time.Now().UTC().Add(quoteTTL),
	}
	return quote, raw, nil
}

// ExecuteSwap fetches an aggregator-built transaction for the best current
// route, signs it locally and submits it.
func (c *connector) ExecuteSwap(ctx context.Context, tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) (*types.Transaction, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	quote, rawQuote, err := c.fetchQuote(ctx, tokenIn, tokenOut, amountIn, slippageTolerance)
	if err != nil {
		return nil, err
	}

	// Pre-flight balance check.
	held, err := c.getChain().TokenBalance(ctx, c.wallet.PublicKey(), sol.MustPublicKeyFromBase58(quote.InputToken))
	if err != nil {
		return nil, err
	}
	if held.Amount.LessThan(amountIn) {
		return nil, commonerrors.Newf(commonerrors.InsufficientBalance,
			"wallet holds %s of %s, need %s", held.Amount, quote.InputToken, amountIn)
	}

	tx, err := c.api.buildSwapTransaction(ctx, c.wallet.PublicKey(), rawQuote)
	if err != nil {
		return nil, err
	}

	sig, err := c.getChain().SendTransaction(ctx, c.wallet, tx)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"dex":       types.Jupiter,
		"signature": sig.String(),
	}).Info("Swap submitted")

	return types.NewPendingTransaction(sig.String()), nil
}

// GetPoolInfo is unsupported: the aggregator routes across other venues'
// pools and owns none of its own.
func (c *connector) GetPoolInfo(_ context.Context, _, _ string) (*types.PoolInfo, error) {
	return nil, commonerrors.New(commonerrors.UnsupportedOperation, "jupiter is an aggregator and has no pools")
}

// AddLiquidity is unsupported for the aggregator.
func (c *connector) AddLiquidity(_ context.Context, _, _ string, _, _, _ decimal.Decimal) (*types.Transaction, error) {
	return nil, commonerrors.New(commonerrors.UnsupportedOperation, "jupiter is an aggregator and has no pools")
}

// RemoveLiquidity is unsupported for the aggregator.
func (c *connector) RemoveLiquidity(_ context.Context, _, _ string, _ decimal.Decimal) (*types.Transaction, error) {
	return nil, commonerrors.New(commonerrors.UnsupportedOperation, "jupiter is an aggregator and has no pools")
}

// GetTransactionStatus performs a single signature status lookup.
func (c *connector) GetTransactionStatus(ctx context.Context, txHash string) (*types.TransactionStatus, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	return c.getChain().SignatureStatus(ctx, txHash)
}

// GetGasPrice is unsupported: Solana's fee model has no single gas price and
// this connector does not synthesize one.
func (c *connector) GetGasPrice(_ context.Context) (decimal.Decimal, error) {
	return decimal.Zero, commonerrors.New(commonerrors.UnsupportedOperation, "jupiter does not expose a gas price")
}

// parseMint validates a base58 mint address.
func parseMint(tokenAddress string) (sol.PublicKey, error) {
	if tokenAddress == "" {
		return sol.PublicKey{}, commonerrors.New(commonerrors.TokenNotFound, "token address is empty")
	}
	mint, err := sol.PublicKeyFromBase58(tokenAddress)
	if err != nil {
		return sol.PublicKey{}, commonerrors.Wrap(commonerrors.TokenNotFound, err, "token address does not parse")
	}
	return mint, nil
}

// validateSwapInput checks the shared preconditions of quote and swap calls.
func validateSwapInput(tokenIn, tokenOut string, amountIn, slippageTolerance decimal.Decimal) error {
	if tokenIn == tokenOut {
		return errors.New("input and output tokens must be distinct")
	}
	if !amountIn.IsPositive() {
		return errors.New("amount must be positive")
	}
	if !types.ValidSlippage(slippageTolerance) {
		return errors.New("slippage tolerance must be in [0, 1]")
	}
	return nil
}

var _ types.Connector = (*connector)(nil)
