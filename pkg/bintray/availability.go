package bintray

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rabbitmq/bintray-go/pkg/poll"
)

// availabilityInterval is short: propagation to mirrors is quick compared to
// index rebuilds.
const availabilityInterval = time.Second

// WaitForAvailability polls the download mirrors until the content is served,
// or timeout elapses.
//
// When a SHA-256 is already set on the content, only a mirror reporting that
// exact digest counts as available; anything else is an older version still
// propagating. When none is set, the first successful response wins and its
// reported digest (if any) is adopted onto the content. 404 and 401 both mean
// "not propagated yet": mirrors answer anonymously and inconsistently while
// content spreads, so neither can be trusted as a permanent verdict. A real
// permissions problem therefore retries until timeout instead of failing
// fast.
func (c *Content) WaitForAvailability(ctx context.Context, timeout time.Duration) (Checksum, error) {
	target := c.downloadURL()
	expected := c.checksum.SHA256

	check := func(resp *http.Response) poll.Outcome[Checksum] {
		slog.Debug("availability probe",
			slog.String("content", c.String()),
			slog.Int("status", resp.StatusCode))

		if statusSuccess(resp.StatusCode) {
			reported := checksumFromResponse(resp)
			if expected != nil {
				if bytes.Equal(reported, expected) {
					return poll.Settled(Checksum{SHA256: reported})
				}
				return poll.Retry[Checksum]()
			}
			return poll.Settled(Checksum{SHA256: reported})
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusNotFound:
			return poll.Retry[Checksum]()
		default:
			return poll.Failed[Checksum](&UnexpectedStatusError{Status: resp.StatusCode})
		}
	}

	result, err := poll.Wait(ctx, c.client, poll.Request[Checksum]{
		Method:   http.MethodHead,
		URL:      target,
		Check:    check,
		Interval: c.interval(availabilityInterval),
		Timeout:  timeout,
	})
	if err != nil {
		return Checksum{}, err
	}

	if result.SHA256 != nil {
		c.checksum.SHA256 = result.SHA256
	}
	slog.Info("content available",
		slog.String("content", c.String()),
		slog.String("sha256", result.SHA256Hex()))
	return result, nil
}
