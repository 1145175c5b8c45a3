package evm

import (
	"context"
	"sync"

	commonerrors "github.com/VelaTrade/dex-lib/common/errors"
	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/VelaTrade/dex-lib/connectionmonitor"
	"github.com/VelaTrade/dex-lib/connectors/evm/signer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// tokenMeta caches immutable ERC20 metadata.
type tokenMeta struct {
	symbol   string
	decimals uint8
}

// connector is the shared EVM connector implementation backing Uniswap and
// PancakeSwap. All methods are safe for concurrent use; the nonce counter is
// the only mutable per-connector state and is serialized by its own mutex.
type connector struct {
	params chainParams
	config *types.ConnectorConfig
	logger *logrus.Logger
	wallet common.Address

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex
	client      *ethclient.Client

	// signer is immutable after construction.
	signer signer.Signer

	nonceMutex sync.Mutex
	nonce      uint64
	nonceReady bool

	tokenMetaMutex sync.RWMutex
	tokenMeta      map[common.Address]tokenMeta

	monitorMutex sync.RWMutex
	monitor      connectionmonitor.ConnectionMonitor
}

// NewConnector creates an EVM connector for the given exchange.
//
// Parameters:
// - ctx: the context for managing construction.
// - dex: the exchange to connect to; must be Uniswap or PancakeSwap.
// - creds: the wallet credentials; the private key must derive the declared address.
// - config: the connector configuration.
// - logger: the logger for logging events.
//
// Returns:
// - types.Connector: a new EVM connector instance.
// - error: a categorized error if construction fails.
func NewConnector(
	ctx context.Context,
	dex types.DEX,
	creds types.WalletCredentials,
	config *types.ConnectorConfig,
	logger *logrus.Logger,
) (types.Connector, error) {
	params, ok := paramsFor(dex, config)
	if !ok {
		return nil, commonerrors.Newf(commonerrors.UnsupportedOperation, "dex %s is not an EVM exchange", dex)
	}

	txSigner, err := signer.NewSignerFromHex(creds.PrivateKey())
	if err != nil {
		return nil, commonerrors.Wrap(commonerrors.InvalidCredentials, err, "failed to create signer")
	}

	wallet := common.HexToAddress(creds.Address())
	if txSigner.Address() != wallet {
		return nil, commonerrors.New(commonerrors.InvalidCredentials, "private key does not match wallet address")
	}

	client, err := ethclient.DialContext(ctx, config.RpcUrl)
	if err != nil {
		return nil, commonerrors.WrapNetwork(err, "failed to create client")
	}

	c := &connector{
		params:    params,
		config:    config,
		logger:    logger,
		wallet:    wallet,
		client:    client,
		signer:    txSigner,
		tokenMeta: make(map[common.Address]tokenMeta),
	}

	if err := c.initMonitor(ctx); err != nil {
		client.Close()
		return nil, err
	}

	return c, nil
}

// initMonitor starts the background RPC health monitor for this connector.
func (c *connector) initMonitor(ctx context.Context) error {
	monitor := connectionmonitor.NewConnectionMonitor(c, c.logger, c.params.dex.String())
	if err := monitor.Start(ctx); err != nil {
		return commonerrors.Wrap(commonerrors.InternalError, err, "failed to start connection monitor")
	}

	c.monitorMutex.Lock()
	c.monitor = monitor
	c.monitorMutex.Unlock()
	return nil
}

// Close stops the connection monitor and closes the RPC client. The connector
// must not be used afterwards.
func (c *connector) Close() {
	c.monitorMutex.Lock()
	if c.monitor != nil {
		c.monitor.Stop()
		c.monitor = nil
	}
	c.monitorMutex.Unlock()

	c.clientMutex.Lock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	c.clientMutex.Unlock()
}

// DexName returns the canonical lowercase exchange name.
func (c *connector) DexName() string {
	return c.params.dex.String()
}

// BlockchainNetwork returns the network tag the connector settles on.
func (c *connector) BlockchainNetwork() types.Network {
	return c.params.dex.Network()
}

// TestConnection returns true iff the chain RPC responds and the wallet
// address resolves on it.
func (c *connector) TestConnection(ctx context.Context) (bool, error) {
	client := c.getClient()
	if client == nil {
		return false, commonerrors.New(commonerrors.InternalError, "client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout())
	defer cancel()

	if _, err := client.BlockNumber(ctx); err != nil {
		return false, commonerrors.WrapNetwork(err, "chain RPC did not respond")
	}

	if _, err := client.BalanceAt(ctx, c.wallet, nil); err != nil {
		return false, commonerrors.WrapNetwork(err, "failed to resolve wallet")
	}

	return true, nil
}

// CheckConnection implements connectionmonitor.RPCClient.
func (c *connector) CheckConnection(ctx context.Context) error {
	client := c.getClient()
	if client == nil {
		return commonerrors.New(commonerrors.InternalError, "client not initialized")
	}
	_, err := client.BlockNumber(ctx)
	return err
}

// Reconnect implements connectionmonitor.RPCClient by redialing the RPC URL.
func (c *connector) Reconnect(ctx context.Context) error {
	client, err := ethclient.DialContext(ctx, c.config.RpcUrl)
	if err != nil {
		return err
	}

	c.clientMutex.Lock()
	if c.client != nil {
		c.client.Close()
	}
	c.client = client
	c.clientMutex.Unlock()

	c.logger.WithField("dex", c.params.dex).Info("Reconnected to chain RPC")
	return nil
}

// getClient returns the current RPC client under a read lock.
func (c *connector) getClient() *ethclient.Client {
	c.clientMutex.RLock()
	defer c.clientMutex.RUnlock()
	return c.client
}

// nextNonce reserves the next transaction nonce. The first call seeds the
// counter from the chain's pending nonce; every later call is a serialized
// monotonic increment, so nonce selection stays monotonic relative to any
// transaction this connector has already signed.
func (c *connector) nextNonce(ctx context.Context) (uint64, error) {
	c.nonceMutex.Lock()
	defer c.nonceMutex.Unlock()

	if !c.nonceReady {
		client := c.getClient()
		if client == nil {
			return 0, commonerrors.New(commonerrors.InternalError, "client not initialized")
		}
		pending, err := client.PendingNonceAt(ctx, c.wallet)
		if err != nil {
			return 0, commonerrors.WrapNetwork(err, "failed to get pending nonce")
		}
		c.nonce = pending
		c.nonceReady = true
	}

	nonce := c.nonce
	c.nonce++
	return nonce, nil
}

// callTimeout derives the per-call context for a network operation.
func (c *connector) callTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.config.CallTimeout())
}

var _ types.Connector = (*connector)(nil)
