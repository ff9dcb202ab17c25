// Package poll implements a cancellable retry loop over an HTTP probe.
//
// A poll issues the same request repeatedly and hands each response to a
// check function, which either settles the poll (success or fatal error) or
// asks for another attempt. The repository service converges asynchronously,
// so "not there yet" is the common case and is not an error.
package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ErrTimeout is returned when the overall deadline elapses before the check
// function settles. The last transient condition is deliberately discarded.
var ErrTimeout = errors.New("poll: timed out")

// Doer issues a single HTTP request. *bintray.Client satisfies this.
type Doer interface {
	Do(ctx context.Context, method, url string) (*http.Response, error)
}

// Outcome is the verdict of one probe: retry, or settled with a value or a
// fatal error. A probe settles at most once.
type Outcome[T any] struct {
	settled bool
	value   T
	err     error
}

// Retry requests another probe after the interval.
func Retry[T any]() Outcome[T] {
	return Outcome[T]{}
}

// Settled ends the poll successfully.
func Settled[T any](value T) Outcome[T] {
	return Outcome[T]{settled: true, value: value}
}

// Failed ends the poll with a fatal error.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{settled: true, err: err}
}

// Request describes one poll. It is owned by a single Wait call.
type Request[T any] struct {
	Method   string
	URL      string
	Check    func(*http.Response) Outcome[T]
	Interval time.Duration
	Timeout  time.Duration
}

type result[T any] struct {
	value T
	err   error
}

// Wait probes req.URL until the check settles, req.Timeout elapses, or ctx is
// cancelled.
//
// Exactly one worker goroutine runs the probes, strictly sequentially. On
// timeout or cancellation the worker is signalled through the probe context
// and joined before Wait returns: no request is in flight once Wait has
// returned. A probe that fails at the transport level settles the poll with
// that error; it is not retried.
func Wait[T any](ctx context.Context, client Doer, req Request[T]) (T, error) {
	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan result[T], 1)
	done := make(chan struct{})

	go func() {
		defer close(done)

		for attempt := 1; ; attempt++ {
			resp, err := client.Do(probeCtx, req.Method, req.URL)
			if err != nil {
				results <- result[T]{err: fmt.Errorf("probing %s: %w", req.URL, err)}
				return
			}

			outcome := req.Check(resp)
			_ = resp.Body.Close()
			if outcome.settled {
				results <- result[T]{value: outcome.value, err: outcome.err}
				return
			}

			slog.Debug("condition not met, waiting",
				slog.String("url", req.URL),
				slog.Int("attempt", attempt),
				slog.Duration("interval", req.Interval))

			interval := time.NewTimer(req.Interval)
			select {
			case <-probeCtx.Done():
				interval.Stop()
				return
			case <-interval.C:
			}
		}
	}()

	deadline := time.NewTimer(req.Timeout)
	defer deadline.Stop()

	var zero T
	select {
	case res := <-results:
		<-done
		return res.value, res.err
	case <-ctx.Done():
		cancel()
		<-done
		return zero, ctx.Err()
	case <-deadline.C:
		cancel()
		<-done
		return zero, ErrTimeout
	}
}
