package framework

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ErrForcedExit is returned by Wait after a second stop signal.
var ErrForcedExit = errors.New("forced exit")

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun attaches a name to a Runnable, used in logs and errors.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

type runResult struct {
	name string
	err  error
}

// Runner runs Runnables concurrently on a shared context. The first one
// to stop cancels the others.
type Runner struct {
	Context context.Context

	cancel    context.CancelFunc
	pending   int
	resultCh  chan runResult
	forcedCh  chan struct{}
	doneCh    chan struct{}
	forceOnce sync.Once
	nameCount int
}

// NewRunner creates a Runner on a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a Runner derived from ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	r := &Runner{
		resultCh: make(chan runResult),
		forcedCh: make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	r.Context, r.cancel = context.WithCancel(ctx)
	return r
}

// HandleSignals stops the Runnables on SIGINT or SIGTERM. A second signal
// makes Wait return ErrForcedExit without waiting.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			glog.Infof("%v: stopping", sig)
			r.cancel()
		case <-r.Context.Done():
			return
		}
		select {
		case <-sigCh:
			glog.Error("stop requested again, force exit")
			r.forceExit()
		case <-r.doneCh:
		}
	}()
	return r
}

// forceExit makes Wait return without waiting for the Runnables.
// Runnables still running are abandoned.
func (r *Runner) forceExit() {
	r.forceOnce.Do(func() { close(r.forcedCh) })
}

// Go starts Runnables.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		r.nameCount++
		name := "runner " + strconv.Itoa(r.nameCount)
		if named, ok := runnable.(Named); ok {
			name = named.Name()
		}
		r.pending++
		glog.V(4).Infof("%s: start", name)
		go func(runnable Runnable, name string) {
			err := runnable.Run(r.Context)
			glog.V(4).Infof("%s: stopped: %v", name, err)
			r.cancel()
			select {
			case r.resultCh <- runResult{name: name, err: err}:
			case <-r.forcedCh:
			}
		}(runnable, name)
	}
	return r
}

// Wait blocks until every Runnable stops. Errors other than
// context.Canceled are collected, tagged with the runner name.
func (r *Runner) Wait() error {
	defer close(r.doneCh)
	var errs AggregatedError
	for ; r.pending > 0; r.pending-- {
		select {
		case <-r.forcedCh:
			return ErrForcedExit
		case res := <-r.resultCh:
			if res.err != nil && res.err != context.Canceled {
				errs.Add(errors.Wrap(res.err, res.name))
			}
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs fn, which has no context of its own, and
// calls onCancel when ctx is done so fn can return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if onCancel != nil {
		onCancel()
	}
	<-errCh
	return context.Canceled
}
