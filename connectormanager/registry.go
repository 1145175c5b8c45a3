// Package connectormanager holds live connector instances. The factory is
// deliberately stateless; reuse of a connector across requests lives here.
package connectormanager

import (
	"context"
	"sync"

	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/sirupsen/logrus"
)

// ConnectorRegistry manages the set of live connectors, one per exchange.
type ConnectorRegistry interface {
	// Add constructs a connector for the exchange and stores it, replacing
	// and closing any previous instance.
	Add(ctx context.Context, dex types.DEX, creds types.WalletCredentials, config *types.ConnectorConfig) error

	// Get returns the live connector for the exchange, or nil.
	Get(dex types.DEX) types.Connector

	// Remove closes and drops the connector for the exchange.
	Remove(dex types.DEX)

	// Shutdown closes and drops every live connector.
	Shutdown()
}

type connectorRegistry struct {
	logger          *logrus.Logger
	connectors      map[types.DEX]types.Connector
	connectorsMutex sync.RWMutex
	factory         interface {
		CreateConnector(context.Context, types.DEX, types.WalletCredentials, *types.ConnectorConfig, *logrus.Logger) (types.Connector, error)
	}
	factoryMutex sync.RWMutex
}

// NewConnectorRegistry creates a registry backed by the given factory.
func NewConnectorRegistry(factory interface {
	CreateConnector(context.Context, types.DEX, types.WalletCredentials, *types.ConnectorConfig, *logrus.Logger) (types.Connector, error)
}, logger *logrus.Logger) ConnectorRegistry {
	return &connectorRegistry{
		connectors: make(map[types.DEX]types.Connector),
		factory:    factory,
		logger:     logger,
	}
}

func (r *connectorRegistry) Add(ctx context.Context, dex types.DEX, creds types.WalletCredentials, config *types.ConnectorConfig) error {
	// Lock factory for reading to prevent changes during construction.
	r.factoryMutex.RLock()
	connector, err := r.factory.CreateConnector(ctx, dex, creds, config, r.logger)
	r.factoryMutex.RUnlock()

	if err != nil {
		return err
	}

	r.connectorsMutex.Lock()
	previous := r.connectors[dex]
	r.connectors[dex] = connector
	r.connectorsMutex.Unlock()

	closeConnector(previous)
	return nil
}

func (r *connectorRegistry) Get(dex types.DEX) types.Connector {
	r.connectorsMutex.RLock()
	connector := r.connectors[dex]
	r.connectorsMutex.RUnlock()
	return connector
}

func (r *connectorRegistry) Remove(dex types.DEX) {
	r.connectorsMutex.Lock()
	connector := r.connectors[dex]
	delete(r.connectors, dex)
	r.connectorsMutex.Unlock()

	closeConnector(connector)
}

func (r *connectorRegistry) Shutdown() {
	r.connectorsMutex.Lock()
	connectors := r.connectors
	r.connectors = make(map[types.DEX]types.Connector)
	r.connectorsMutex.Unlock()

	for _, connector := range connectors {
		closeConnector(connector)
	}
}

// closeConnector releases a connector's background resources when it exposes
// a Close method.
func closeConnector(connector types.Connector) {
	if closer, ok := connector.(interface{ Close() }); ok {
		closer.Close()
	}
}
