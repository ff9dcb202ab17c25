package poll_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbitmq/bintray-go/pkg/poll"
)

type doer struct {
	client http.Client
}

func (d *doer) Do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	return d.client.Do(req)
}

func TestWait_SettlesImmediately(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	res, err := poll.Wait(context.Background(), &doer{}, poll.Request[string]{
		Method: http.MethodGet,
		URL:    srv.URL,
		Check: func(resp *http.Response) poll.Outcome[string] {
			return poll.Settled("done")
		},
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "done", res)
}

func TestWait_RetriesUntilSettled(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	res, err := poll.Wait(context.Background(), &doer{}, poll.Request[int]{
		Method: http.MethodGet,
		URL:    srv.URL,
		Check: func(resp *http.Response) poll.Outcome[int] {
			if hits.Load() < 3 {
				return poll.Retry[int]()
			}
			return poll.Settled(int(hits.Load()))
		},
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res)
}

func TestWait_FatalErrorPropagatesVerbatim(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	boom := assert.AnError
	_, err := poll.Wait(context.Background(), &doer{}, poll.Request[string]{
		Method: http.MethodGet,
		URL:    srv.URL,
		Check: func(resp *http.Response) poll.Outcome[string] {
			return poll.Failed[string](boom)
		},
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	})
	require.ErrorIs(t, err, boom)
}

func TestWait_TransportFailureIsFatal(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from the first probe

	var checks atomic.Int32
	_, err := poll.Wait(context.Background(), &doer{}, poll.Request[string]{
		Method: http.MethodGet,
		URL:    srv.URL,
		Check: func(resp *http.Response) poll.Outcome[string] {
			checks.Add(1)
			return poll.Retry[string]()
		},
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, poll.ErrTimeout)
	assert.Zero(t, checks.Load(), "check must not run for a failed probe")
}

func TestWait_TimeoutJoinsWorker(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	_, err := poll.Wait(context.Background(), &doer{}, poll.Request[string]{
		Method: http.MethodGet,
		URL:    srv.URL,
		Check: func(resp *http.Response) poll.Outcome[string] {
			return poll.Retry[string]()
		},
		Interval: 5 * time.Millisecond,
		Timeout:  40 * time.Millisecond,
	})
	require.ErrorIs(t, err, poll.ErrTimeout)

	// No probes once Wait has returned: the worker was joined, not abandoned.
	after := hits.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, hits.Load())
}

func TestWait_ContextCancellation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := poll.Wait(ctx, &doer{}, poll.Request[string]{
		Method: http.MethodGet,
		URL:    srv.URL,
		Check: func(resp *http.Response) poll.Outcome[string] {
			return poll.Retry[string]()
		},
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	})
	require.Error(t, err)
}

func TestWait_CancellationDuringIntervalSleep(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := poll.Wait(ctx, &doer{}, poll.Request[string]{
		Method: http.MethodGet,
		URL:    srv.URL,
		Check: func(resp *http.Response) poll.Outcome[string] {
			return poll.Retry[string]()
		},
		Interval: 10 * time.Second,
		Timeout:  30 * time.Second,
	})
	elapsed := time.Since(start)

	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, poll.ErrTimeout)
	assert.Less(t, elapsed, time.Second, "cancellation must interrupt the interval sleep")

	// The worker was joined: no probes after Wait has returned.
	after := hits.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, hits.Load())
}
