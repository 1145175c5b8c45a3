// Package connectors creates DEX connectors through a constructor registry.
// Construction is stateless: every call dials a fresh connector and connector
// reuse is the caller's concern.
package connectors

import (
	"context"
	"sync"

	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/VelaTrade/dex-lib/connectors/evm"
	"github.com/VelaTrade/dex-lib/connectors/jupiter"
	"github.com/VelaTrade/dex-lib/connectors/raydium"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConnectorConstructor represents a function that constructs a new connector
// instance.
//
// Parameters:
// - ctx: the context for managing construction.
// - creds: the wallet credentials for the connector.
// - config: the configuration for the connector.
// - logger: the logger for logging purposes.
//
// Returns:
// - types.Connector: the constructed connector instance.
// - error: an error if the connector construction fails.
type ConnectorConstructor func(ctx context.Context, creds types.WalletCredentials, config *types.ConnectorConfig, logger *logrus.Logger) (types.Connector, error)

// ConnectorFactory defines the interface for connector creation.
type ConnectorFactory interface {
	// RegisterConstructor registers a new connector constructor for a DEX.
	//
	// Parameters:
	// - dex: the exchange to register.
	// - constructor: the constructor function for the exchange.
	RegisterConstructor(dex types.DEX, constructor ConnectorConstructor)

	// CreateConnector creates a new connector instance for the exchange.
	//
	// Parameters:
	// - ctx: the context for managing construction.
	// - dex: the exchange to connect to.
	// - creds: the wallet credentials for the connector.
	// - config: the configuration for the connector.
	// - logger: the logger for logging purposes.
	//
	// Returns:
	// - types.Connector: the created connector instance.
	// - error: an error if the connector creation fails.
	CreateConnector(ctx context.Context, dex types.DEX, creds types.WalletCredentials, config *types.ConnectorConfig, logger *logrus.Logger) (types.Connector, error)
}

type connectorFactory struct {
	// constructors stores the mapping of exchanges to their constructors.
	constructors map[types.DEX]ConnectorConstructor
	// constructorsMutex protects access to the constructors map.
	constructorsMutex sync.RWMutex
}

// NewConnectorFactory creates a factory preloaded with a constructor for
// every supported exchange.
//
// Returns:
// - ConnectorFactory: the new connector factory instance.
func NewConnectorFactory() ConnectorFactory {
	factory := &connectorFactory{
		constructors: make(map[types.DEX]ConnectorConstructor),
	}

	factory.registerConstructors()

	return factory
}

// RegisterConstructor registers a new connector constructor.
func (f *connectorFactory) RegisterConstructor(dex types.DEX, constructor ConnectorConstructor) {
	f.constructorsMutex.Lock()
	defer f.constructorsMutex.Unlock()

	f.constructors[dex] = constructor
}

// CreateConnector creates a new connector instance for the exchange.
func (f *connectorFactory) CreateConnector(ctx context.Context, dex types.DEX, creds types.WalletCredentials, config *types.ConnectorConfig, logger *logrus.Logger) (types.Connector, error) {
	f.constructorsMutex.RLock()
	constructor, exists := f.constructors[dex]
	f.constructorsMutex.RUnlock()

	if !exists {
		return nil, errors.Errorf("unsupported dex: %s", dex)
	}

	return constructor(ctx, creds, config, logger)
}

// registerConstructors registers the default constructor for every supported
// exchange.
func (f *connectorFactory) registerConstructors() {
	// Uniswap and PancakeSwap share the EVM connector; only the chain
	// parameters differ.
	f.RegisterConstructor(types.Uniswap, func(ctx context.Context, creds types.WalletCredentials, config *types.ConnectorConfig, logger *logrus.Logger) (types.Connector, error) {
		return evm.NewConnector(ctx, types.Uniswap, creds, config, logger)
	})

	f.RegisterConstructor(types.PancakeSwap, func(ctx context.Context, creds types.WalletCredentials, config *types.ConnectorConfig, logger *logrus.Logger) (types.Connector, error) {
		return evm.NewConnector(ctx, types.PancakeSwap, creds, config, logger)
	})

	f.RegisterConstructor(types.Raydium, func(ctx context.Context, creds types.WalletCredentials, config *types.ConnectorConfig, logger *logrus.Logger) (types.Connector, error) {
		return raydium.NewConnector(ctx, creds, config, logger)
	})

	f.RegisterConstructor(types.Jupiter, func(ctx context.Context, creds types.WalletCredentials, config *types.ConnectorConfig, logger *logrus.Logger) (types.Connector, error) {
		return jupiter.NewConnector(ctx, creds, config, logger)
	})
}
