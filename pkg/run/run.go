// Package run executes the long-running components of the firmware
// and aggregates their errors.
package run

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/golang/glog"
)

// Runnable is a long-running component driven by a context.
type Runnable interface {
	Run(context.Context) error
}

// Func is the func form of Runnable.
type Func func(context.Context) error

// Run implements Runnable.
func (f Func) Run(ctx context.Context) error {
	return f(ctx)
}

// AggregatedError collects multiple errors.
type AggregatedError struct {
	Errors []error
}

// Error implements error.
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	msg := make([]string, len(e.Errors)+1)
	msg[0] = "multiple errors:"
	for n, err := range e.Errors {
		msg[n+1] = err.Error()
	}
	return strings.Join(msg, "\n")
}

// Add appends errors, skipping nil.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil when no error was collected, the sole error
// when there was one, and the aggregate otherwise.
func (e *AggregatedError) Aggregate() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}

// Group runs Runnables under a shared context. The first failure
// cancels the rest.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	errCh  chan error
	count  int
}

// NewGroup creates a Group under a parent context.
func NewGroup(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{ctx: ctx, cancel: cancel, errCh: make(chan error)}
}

// HandleSignals cancels the group on SIGINT/SIGTERM.
func (g *Group) HandleSignals() *Group {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		glog.Infof("signal %v, stopping", s)
		g.cancel()
	}()
	return g
}

// Go spawns runners.
func (g *Group) Go(runners ...Runnable) *Group {
	for _, r := range runners {
		g.count++
		go func(r Runnable) {
			g.errCh <- r.Run(g.ctx)
		}(r)
	}
	return g
}

// Wait blocks until every runner stopped and aggregates their errors.
// Cancellation is not an error.
func (g *Group) Wait() error {
	var errs AggregatedError
	for i := 0; i < g.count; i++ {
		if err := <-g.errCh; err != nil && err != context.Canceled {
			errs.Add(err)
			g.cancel()
		}
	}
	g.cancel()
	return errs.Aggregate()
}
