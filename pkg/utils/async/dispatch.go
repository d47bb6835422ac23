package async

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sleuth/pkg/utils/errutil"
	"github.com/secmon-lab/sleuth/pkg/utils/logging"
)

var (
	mu         sync.Mutex
	inFlight   sync.WaitGroup
	baseCtx    context.Context
	baseCancel context.CancelFunc
)

func init() {
	baseCtx, baseCancel = context.WithCancel(context.Background())
}

// Dispatch executes handler in a new goroutine with a context detached from
// the request lifetime. The logger of ctx is preserved. Errors and panics are
// logged; cancellations are logged at warn level and not reported.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	mu.Lock()
	bgCtx := baseCtx
	inFlight.Add(1)
	mu.Unlock()

	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		defer inFlight.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		err := handler(bgCtx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			logging.From(bgCtx).Warn("async handler cancelled", "error", err.Error())
		default:
			_ = errutil.Handle(bgCtx, goerr.Wrap(err, "async handler failed"), "async handler failed")
		}
	}()
}

// Wait blocks until every dispatched handler has returned. When ctx is done
// first, the handlers' context is cancelled and Wait keeps waiting for them
// to return. Handlers dispatched afterwards get a fresh context. Call Wait
// only once nothing dispatches anymore, e.g. after the HTTP server shut down.
func Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
	}

	mu.Lock()
	cancel := baseCancel
	baseCtx, baseCancel = context.WithCancel(context.Background())
	mu.Unlock()

	logging.Default().Warn("cancelling in-flight async handlers", "cause", context.Cause(ctx))
	cancel()
	<-done
}
