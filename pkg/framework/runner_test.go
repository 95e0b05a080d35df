package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerFirstStopCancelsOthers(t *testing.T) {
	failure := errors.New("port closed")
	r := NewRunner().Go(
		NamedRun("port", RunFunc(func(ctx context.Context) error {
			return failure
		})),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, failure))
	require.Equal(t, "port: port closed", err.Error())
}

func TestRunnerCleanStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"), nil, errors.New("b"))
	require.Equal(t, "2 errors: a; b", errs.Aggregate().Error())
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	go func() {
		time.Sleep(time.Millisecond)
		cancel()
	}()
	err := RunWithContextCancel(ctx, func() { close(stop) }, func() error {
		<-stop
		return nil
	})
	require.Equal(t, context.Canceled, err)

	require.Equal(t, errors.New("x"), RunWithContextCancel(context.Background(), nil, func() error {
		return errors.New("x")
	}))
}

func TestRunnerForcedExit(t *testing.T) {
	release := make(chan struct{})
	stopped := make(chan struct{})
	r := NewRunner().Go(RunFunc(func(ctx context.Context) error {
		defer close(stopped)
		<-release
		return nil
	}))
	r.forceExit()
	require.Equal(t, ErrForcedExit, r.Wait())

	close(release)
	<-stopped
	r.forceExit()
}
