package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

var (
	_ Dispatcher = (*latencyDispatcher)(nil)
	_ Dispatcher = (*immediateDispatcher)(nil)
)

// Dispatcher models the asynchronous request boundary of the stores: an
// operation is fired, suspends for a simulated network delay, then its
// mutation body is applied as one step. The returned channel closes once
// apply has run. Dispatched operations are not cancellable; once fired
// they run to completion.
type Dispatcher interface {
	Dispatch(ctx context.Context, op string, apply func()) <-chan struct{}
}

// latencyDispatcher applies each operation after a fixed delay, the way a
// remote call would resolve. Each operation gets a uid so its log lines
// can be correlated.
type latencyDispatcher struct {
	logger  *zap.Logger
	clock   Clocker
	ids     UIDHandler
	latency time.Duration
}

func NewLatencyDispatcher(logger *zap.Logger, clock Clocker, ids UIDHandler, latency time.Duration) Dispatcher {
	return &latencyDispatcher{
		logger:  logger,
		clock:   clock,
		ids:     ids,
		latency: latency,
	}
}

func (d *latencyDispatcher) Dispatch(_ context.Context, op string, apply func()) <-chan struct{} {
	done := make(chan struct{})
	id := d.ids.Generate(OperationIDPrefix)
	start := d.clock.Now()
	d.logger.Debug("dispatch: request fired", zap.String("op", op), zap.String("op.id", id))
	time.AfterFunc(d.latency, func() {
		apply()
		d.logger.Debug("dispatch: request applied",
			zap.String("op", op),
			zap.String("op.id", id),
			zap.Duration("took", d.clock.Now().Sub(start)),
		)
		close(done)
	})
	return done
}

// immediateDispatcher applies operations synchronously. Tests inject it to
// exercise store semantics without real delays.
type immediateDispatcher struct{}

func NewImmediateDispatcher() Dispatcher {
	return immediateDispatcher{}
}

func (immediateDispatcher) Dispatch(_ context.Context, _ string, apply func()) <-chan struct{} {
	apply()
	return doneNow()
}

// doneNow returns an already closed completion channel, used by operations
// whose precondition fails before any request is fired.
func doneNow() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
