package session

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/VelaTrade/dex-lib/sessiondb"
	"github.com/VelaTrade/dex-lib/telemetry"
	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTracker records TrackSession calls and answers with a fixed error.
type stubTracker struct {
	mu      sync.Mutex
	written []record
	err     error
	wrote   chan struct{}
}

func newStubTracker(err error) *stubTracker {
	return &stubTracker{err: err, wrote: make(chan struct{}, 16)}
}

func (s *stubTracker) ExtractIPAddress(r *http.Request) string { return r.RemoteAddr }
func (s *stubTracker) ExtractUserAgent(r *http.Request) string { return r.Header.Get("User-Agent") }

func (s *stubTracker) TrackSession(_ context.Context, _ *sessiondb.Store, userID, ip, userAgent string) error {
	s.mu.Lock()
	s.written = append(s.written, record{userID: userID, ipAddress: ip, userAgent: userAgent})
	s.mu.Unlock()
	s.wrote <- struct{}{}
	return s.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestRecorderStartTwice(t *testing.T) {
	recorder := NewRecorder(newStubTracker(nil), nil, quietLogger(), telemetry.NewMetrics(), 1)
	require.NoError(t, recorder.Start())
	defer recorder.Stop()

	assert.Error(t, recorder.Start())
}

func TestRecorderStopIdempotent(t *testing.T) {
	recorder := NewRecorder(newStubTracker(nil), nil, quietLogger(), telemetry.NewMetrics(), 1)
	require.NoError(t, recorder.Start())

	recorder.Stop()
	recorder.Stop()
}

func TestRecorderRestarts(t *testing.T) {
	stub := newStubTracker(nil)
	recorder := NewRecorder(stub, nil, quietLogger(), telemetry.NewMetrics(), 8)

	require.NoError(t, recorder.Start())
	recorder.Stop()

	// A stopped recorder starts again and drains what was queued meanwhile.
	recorder.Enqueue("user-1", "192.0.2.9", "trader-cli/2.1")
	require.NoError(t, recorder.Start())
	defer recorder.Stop()

	select {
	case <-stub.wrote:
	case <-time.After(5 * time.Second):
		t.Fatal("record was never written after restart")
	}
}

func TestRecorderWritesEnqueuedRecord(t *testing.T) {
	stub := newStubTracker(nil)
	metrics := telemetry.NewMetrics()
	recorder := NewRecorder(stub, nil, quietLogger(), metrics, 8)
	require.NoError(t, recorder.Start())
	defer recorder.Stop()

	recorder.Enqueue("user-1", "192.0.2.9", "trader-cli/2.1")

	select {
	case <-stub.wrote:
	case <-time.After(5 * time.Second):
		t.Fatal("record was never written")
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.Len(t, stub.written, 1)
	assert.Equal(t, "user-1", stub.written[0].userID)
	assert.Equal(t, "192.0.2.9", stub.written[0].ipAddress)
	assert.Equal(t, "trader-cli/2.1", stub.written[0].userAgent)
}

func TestRecorderCountsFailedWrites(t *testing.T) {
	// A permanent error stops the retry loop immediately.
	stub := newStubTracker(backoff.Permanent(assert.AnError))
	metrics := telemetry.NewMetrics()
	recorder := NewRecorder(stub, nil, quietLogger(), metrics, 8)
	require.NoError(t, recorder.Start())

	recorder.Enqueue("user-1", "192.0.2.9", "trader-cli/2.1")

	select {
	case <-stub.wrote:
	case <-time.After(5 * time.Second):
		t.Fatal("write was never attempted")
	}
	recorder.Stop()

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionsFailed))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.SessionsRecorded))
}

func TestRecorderDropsOnFullQueue(t *testing.T) {
	metrics := telemetry.NewMetrics()
	// Not started: nothing drains the single-slot queue.
	recorder := NewRecorder(newStubTracker(nil), nil, quietLogger(), metrics, 1)

	recorder.Enqueue("user-1", "192.0.2.9", "ua")
	recorder.Enqueue("user-2", "192.0.2.10", "ua")

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SessionsDropped))
}
