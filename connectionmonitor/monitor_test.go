package connectionmonitor

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	checkErr     error
	reconnectErr error

	checks     atomic.Int64
	reconnects atomic.Int64
}

func (s *stubClient) CheckConnection(context.Context) error {
	s.checks.Add(1)
	return s.checkErr
}

func (s *stubClient) Reconnect(context.Context) error {
	s.reconnects.Add(1)
	return s.reconnectErr
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestMonitorStartTwice(t *testing.T) {
	monitor := NewConnectionMonitor(&stubClient{}, quietLogger(), "uniswap")
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Stop()

	assert.Error(t, monitor.Start(context.Background()))
}

func TestMonitorStopIdempotent(t *testing.T) {
	monitor := NewConnectionMonitor(&stubClient{}, quietLogger(), "uniswap")
	require.NoError(t, monitor.Start(context.Background()))

	monitor.Stop()
	monitor.Stop()
}

func TestCheckAndReconnectHealthy(t *testing.T) {
	client := &stubClient{}
	monitor := &connectionMonitor{client: client, logger: quietLogger(), dexName: "uniswap"}

	require.NoError(t, monitor.checkAndReconnect(context.Background()))
	assert.Equal(t, int64(1), client.checks.Load())
	assert.Equal(t, int64(0), client.reconnects.Load(), "healthy connections are not redialed")
}

func TestCheckAndReconnectRecovers(t *testing.T) {
	client := &stubClient{checkErr: errors.New("connection refused")}
	monitor := &connectionMonitor{client: client, logger: quietLogger(), dexName: "uniswap"}

	require.NoError(t, monitor.checkAndReconnect(context.Background()))
	assert.Equal(t, int64(1), client.reconnects.Load())
}

func TestCheckAndReconnectHonorsCancellation(t *testing.T) {
	client := &stubClient{
		checkErr:     errors.New("connection refused"),
		reconnectErr: errors.New("still refused"),
	}
	monitor := &connectionMonitor{client: client, logger: quietLogger(), dexName: "uniswap"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := monitor.checkAndReconnect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), client.reconnects.Load(), "cancellation cuts the retry loop short")
}
