package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	queueSize    = 100
	writeTimeout = 5 * time.Second
)

// Dispatcher writes events off the request path. A full queue drops the
// event; audit never breaks the API.
type Dispatcher struct {
	sinks  []Sink
	queue  chan Event
	logger *zap.Logger
	now    func() time.Time

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		sinks:  sinks,
		queue:  make(chan Event, queueSize), // buffer seguro
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			if err := s.Write(ctx, ev); err != nil {
				d.logger.Warn("audit sink failed",
					zap.String("action", ev.Action),
					zap.Error(err),
				)
			}
			cancel()
		}
	}
}

// Dispatch enqueues without blocking. It reports whether the event was kept.
func (d *Dispatcher) Dispatch(ev Event) (queued bool) {
	if ev.At.IsZero() {
		ev.At = d.now()
	}
	defer func() {
		// Dispatch after Close
		if recover() != nil {
			queued = false
		}
	}()

	select {
	case d.queue <- ev:
		return true
	default:
		// fila cheia → descartamos audit (nunca quebrar API)
		d.logger.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
		return false
	}
}

// Close stops accepting events and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}
