// Package connectionmonitor keeps a connector's chain RPC connection healthy
// by probing it periodically and redialing after failures.
package connectionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// healthCheckInterval defines the interval between RPC health probes.
	healthCheckInterval = 30 * time.Second
	// reconnectTimeout defines the pause between reconnection attempts.
	reconnectTimeout = 5 * time.Second
	// maxReconnectAttempts bounds reconnection attempts per failed probe.
	maxReconnectAttempts = 3
)

// ConnectionMonitor represents the RPC health monitoring interface.
type ConnectionMonitor interface {
	// Start starts health monitoring in the background.
	Start(ctx context.Context) error
	// Stop stops health monitoring.
	Stop()
}

// RPCClient is the slice of a connector the monitor needs: a liveness probe
// and a way to re-establish the connection.
type RPCClient interface {
	// CheckConnection checks if the RPC connection is alive.
	CheckConnection(ctx context.Context) error
	// Reconnect re-establishes the RPC connection.
	Reconnect(ctx context.Context) error
}

type connectionMonitor struct {
	client       RPCClient
	logger       *logrus.Logger
	dexName      string
	stopChan     chan struct{}
	isMonitoring bool
	monitorMutex sync.RWMutex
}

// NewConnectionMonitor creates a monitor for one connector's RPC connection.
//
// Parameters:
// - client: the RPC client to monitor.
// - logger: the logger for logging purposes.
// - dexName: the exchange the connection belongs to, for log correlation.
//
// Returns:
// - ConnectionMonitor: the new connection monitor instance.
func NewConnectionMonitor(client RPCClient, logger *logrus.Logger, dexName string) ConnectionMonitor {
	return &connectionMonitor{
		client:   client,
		logger:   logger,
		dexName:  dexName,
		stopChan: make(chan struct{}),
	}
}

// Start starts health monitoring in the background.
//
// Returns:
// - error: an error if the monitor is already running.
func (m *connectionMonitor) Start(ctx context.Context) error {
	m.monitorMutex.Lock()
	if m.isMonitoring {
		m.monitorMutex.Unlock()
		return errors.Errorf("connection monitor is already running for %s", m.dexName)
	}
	m.isMonitoring = true
	m.monitorMutex.Unlock()

	go m.monitorConnection(ctx)
	return nil
}

// Stop stops health monitoring.
func (m *connectionMonitor) Stop() {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if !m.isMonitoring {
		return
	}

	close(m.stopChan)
	m.isMonitoring = false
}

// monitorConnection probes the connection on a fixed interval until stopped.
func (m *connectionMonitor) monitorConnection(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("dex", m.dexName).Info("Connection monitoring stopped due to context cancellation")
			return

		case <-m.stopChan:
			m.logger.WithField("dex", m.dexName).Info("Connection monitoring stopped")
			return

		case <-ticker.C:
			if err := m.checkAndReconnect(ctx); err != nil {
				m.logger.WithFields(logrus.Fields{
					"dex":   m.dexName,
					"error": err,
				}).Error("Failed to check or reconnect")
			}
		}
	}
}

// checkAndReconnect probes the connection and, on failure, attempts a bounded
// number of reconnects.
func (m *connectionMonitor) checkAndReconnect(ctx context.Context) error {
	if err := m.client.CheckConnection(ctx); err == nil {
		return nil
	} else {
		m.logger.WithFields(logrus.Fields{
			"dex":   m.dexName,
			"error": err,
		}).Warn("Connection check failed, attempting to reconnect")
	}

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		err := m.client.Reconnect(ctx)
		if err == nil {
			m.logger.WithFields(logrus.Fields{
				"dex":     m.dexName,
				"attempt": attempt,
			}).Info("Client successfully reconnected")
			return nil
		}

		m.logger.WithFields(logrus.Fields{
			"dex":     m.dexName,
			"attempt": attempt,
			"error":   err,
		}).Error("Reconnection attempt failed")

		if attempt == maxReconnectAttempts {
			return errors.Wrapf(err, "failed to reconnect %s", m.dexName)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectTimeout):
		}
	}

	return nil
}
