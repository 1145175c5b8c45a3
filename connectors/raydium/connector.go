// Package raydium implements a connector for Raydium AMM pools on Solana.
// Pools are configured statically; reserves are read live from the pool vault
// token accounts.
package raydium

import (
	"context"
	"sync"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/VelaTrade/dex-lib/connectionmonitor"
	solchain "github.com/VelaTrade/dex-lib/connectors/solana"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// solDecimals is the decimal count of native SOL.
const solDecimals = 9

type connector struct {
	config *types.ConnectorConfig
	logger *logrus.Logger
	wallet *solchain.Wallet
	pools  map[[2]string]*pool

	chainMutex sync.RWMutex
	chain      *solchain.Client

	monitorMutex sync.RWMutex
	monitor      connectionmonitor.ConnectionMonitor
}

// NewConnector creates a Raydium connector.
//
// Parameters:
// - ctx: the context for managing construction.
// - creds: the wallet credentials; base58 private key.
// - config: the connector configuration, including the static pool table.
// - logger: the logger for logging events.
//
// Returns:
// - types.Connector: a new Raydium connector instance.
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

	pools, err := buildPoolTable(config.Pools)
	if err != nil {
		return nil, err
	}

	c := &connector{
		config: config,
		logger: logger,
		wallet: wallet,
		pools:  pools,
		chain:  solchain.NewClient(config.RpcUrl, logger),
	}

	monitor := connectionmonitor.NewConnectionMonitor(c, logger, types.Raydium.String())
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
	return types.Raydium.String()
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

// GetTransactionStatus performs a single signature status lookup.
func (c *connector) GetTransactionStatus(ctx context.Context, txHash string) (*types.TransactionStatus, error) {
	ctx, cancel := c.callTimeout(ctx)
	defer cancel()

	return c.getChain().SignatureStatus(ctx, txHash)
}

var _ types.Connector = (*connector)(nil)
