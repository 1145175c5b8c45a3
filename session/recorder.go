package session

import (
	"context"
	"sync"
	"time"

	"github.com/VelaTrade/dex-lib/sessiondb"
	"github.com/VelaTrade/dex-lib/telemetry"
	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultQueueSize bounds the recorder's backlog; overflow drops records.
	defaultQueueSize = 1024
	// writeRetryWindow bounds the retries spent on one record.
	writeRetryWindow = 10 * time.Second
)

// record carries the inputs of one session write, copied out of the request
// before the request finishes.
type record struct {
	userID    string
	ipAddress string
	userAgent string
}

// Recorder writes session records off the request path. A bounded queue feeds
// a single worker goroutine; when the queue is full the record is dropped and
// counted, never blocking the request. Start and Stop may be cycled; records
// enqueued while stopped wait in the queue for the next Start.
type Recorder struct {
	tracker Tracker
	store   *sessiondb.Store
	logger  *logrus.Logger
	metrics *telemetry.Metrics

	queue        chan record
	stopChan     chan struct{}
	done         chan struct{}
	isRunning    bool
	runningMutex sync.Mutex
}

// NewRecorder creates a recorder writing through the tracker to the store.
// queueSize <= 0 selects the default queue size.
//
// Parameters:
// - tracker: the tracker that performs the session write.
// - store: the session record store.
// - logger: the logger for logging events.
// - metrics: the telemetry counters for recorded, dropped and failed writes.
// - queueSize: the queue bound; <= 0 selects the default.
//
// Returns:
// - *Recorder: the new recorder instance.
func NewRecorder(tracker Tracker, store *sessiondb.Store, logger *logrus.Logger, metrics *telemetry.Metrics, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Recorder{
		tracker: tracker,
		store:   store,
		logger:  logger,
		metrics: metrics,
		queue:   make(chan record, queueSize),
	}
}

// Start starts the worker goroutine.
//
// Returns:
// - error: an error if the recorder is already running.
func (r *Recorder) Start() error {
	r.runningMutex.Lock()
	defer r.runningMutex.Unlock()

	if r.isRunning {
		return errors.New("session recorder is already running")
	}

	// Fresh channels per cycle; the previous worker closed its own.
	r.stopChan = make(chan struct{})
	r.done = make(chan struct{})
	r.isRunning = true

	go r.run(r.stopChan, r.done)
	return nil
}

// Stop drains nothing and stops the worker. Records still queued are dropped.
func (r *Recorder) Stop() {
	r.runningMutex.Lock()
	defer r.runningMutex.Unlock()

	if !r.isRunning {
		return
	}

	close(r.stopChan)
	<-r.done
	r.isRunning = false
}

// Enqueue submits a session record for asynchronous writing. It never blocks:
// when the queue is full the record is dropped and the drop counted.
func (r *Recorder) Enqueue(userID, ipAddress, userAgent string) {
	select {
	case r.queue <- record{userID: userID, ipAddress: ipAddress, userAgent: userAgent}:
	default:
		r.metrics.SessionsDropped.Inc()
		r.logger.WithField("userID", userID).Warn("Session recorder queue full, dropping record")
	}
}

// run is the worker loop. Each record is written with bounded retries against
// a background context; request cancellation never reaches the write.
func (r *Recorder) run(stopChan <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stopChan:
			return
		case rec := <-r.queue:
			r.write(rec)
		}
	}
}

func (r *Recorder) write(rec record) {
	ctx, cancel := context.WithTimeout(context.Background(), writeRetryWindow)
	defer cancel()

	operation := func() (struct{}, error) {
		return struct{}{}, r.tracker.TrackSession(ctx, r.store, rec.userID, rec.ipAddress, rec.userAgent)
	}

	_, err := backoff.Retry(
		ctx,
		operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(writeRetryWindow),
	)
	if err != nil {
		r.metrics.SessionsFailed.Inc()
		r.logger.WithFields(logrus.Fields{
			"userID": rec.userID,
			"error":  err,
		}).Error("Failed to write session record")
		return
	}

	r.metrics.SessionsRecorded.Inc()
}
