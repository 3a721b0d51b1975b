// Package bench implements the per-connection hot loop: hold one
// connection, issue requests serially until the deadline, record latency,
// and reconnect with backoff on connection loss. This is the component
// that guarantees the absence of pipelining bias — a new request is never
// built until the previous one (or a reconnect) has resolved.
package bench

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/nobias/nobias/protocol"
	"github.com/nobias/nobias/transport"
	"github.com/nobias/nobias/uri"
)

// reconnectInterval is the fixed backoff between connection attempts.
const reconnectInterval = 200 * time.Millisecond

// WorkerResult is everything one client observed over its lifetime.
type WorkerResult struct {
	// TotalTimes holds exactly one entry for a client that connected (none
	// in the empty result of one that never did): the wall-clock duration
	// this client ran for. It is a slice (rather than a scalar) so that
	// merging results across clients is a plain concatenation.
	TotalTimes []time.Duration

	// RequestTimes holds one latency per successful (200 OK, fully
	// drained) request, in submission order.
	RequestTimes []time.Duration

	// BufferSizes holds exactly one entry for a client that connected (none
	// in the empty result of one that never did): the total bytes read from the
	// wire across every connection this client held, including ones
	// that were replaced by a reconnect.
	BufferSizes []uint64

	Success int
	Error   int

	// Dropped counts in-flight requests abandoned because the
	// connection driver died, or the run deadline expired, while the
	// request was outstanding. Neither a success nor an error.
	Dropped int
}

// Client is the per-connection hot loop described in spec.md §4.5.
type Client struct {
	Connector transport.Connector
	Protocol  protocol.Protocol
	URI       *uri.ParsedURI
	Headers   http.Header

	// Deadline bounds the whole run (wall clock from the first call to
	// Run), not any single request.
	Deadline time.Duration

	// CapacityHint pre-sizes the latency slice to avoid reallocation on
	// the hot path; it is a hint, not a cap.
	CapacityHint int

	Logger zerolog.Logger
}

// Run executes the hot loop until the deadline elapses or ctx is
// cancelled, and returns the accumulated WorkerResult. It never returns a
// non-nil error for a recoverable condition — a client that never manages
// to connect returns an empty WorkerResult, honestly reporting partial
// failure rather than aborting the run.
func (c *Client) Run(ctx context.Context) (WorkerResult, error) {
	start := time.Now()
	counter := transport.NewByteCounter()

	conn, err := c.connectRetry(ctx, start, counter)
	if err != nil {
		return WorkerResult{}, nil
	}
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	runCtx, cancelRun := context.WithDeadline(ctx, start.Add(c.Deadline))
	defer cancelRun()

	times := make([]time.Duration, 0, c.CapacityHint)
	var success, failed, dropped int

loop:
	for c.Deadline > time.Since(start) {
		req, err := c.Protocol.BuildRequest(c.URI, c.Headers)
		if err != nil {
			return WorkerResult{}, fmt.Errorf("bench: building request: %w", err)
		}

		resultCh, ok := conn.Enqueue(req)
		if !ok {
			// The driver had already died by the time we tried to
			// submit; this is equivalent to losing the race below.
			conn, err = c.connectRetry(ctx, start, counter)
			if err != nil {
				break loop
			}
			continue loop
		}

		t0 := time.Now()

		select {
		case res := <-resultCh:
			if requestSucceeded(res) {
				if drainErr := drainAndClose(res.Resp); drainErr != nil {
					failed++
					continue loop
				}
				times = append(times, time.Since(t0))
				success++
			} else {
				if res.Resp != nil {
					_ = drainAndClose(res.Resp)
				}
				failed++
			}

		case <-conn.Done():
			dropped++
			conn, err = c.connectRetry(ctx, start, counter)
			if err != nil {
				break loop
			}

		case <-runCtx.Done():
			dropped++
			break loop
		}
	}

	return WorkerResult{
		TotalTimes:   []time.Duration{time.Since(start)},
		RequestTimes: times,
		BufferSizes:  []uint64{counter.Load()},
		Success:      success,
		Error:        failed,
		Dropped:      dropped,
	}, nil
}

func requestSucceeded(res transport.Result) bool {
	return res.Err == nil && res.Resp != nil && res.Resp.StatusCode == http.StatusOK
}

func drainAndClose(resp *http.Response) error {
	_, err := io.Copy(io.Discard, resp.Body)
	closeErr := resp.Body.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// connectRetry attempts a handshake until the overall deadline (relative
// to start) is exhausted, sleeping a fixed interval between attempts. The
// deadline is checked before each attempt, not before the sleep, so a
// failure right at the deadline boundary still gets its backoff wait
// skipped via ctx cancellation rather than an extra attempt.
func (c *Client) connectRetry(ctx context.Context, start time.Time, counter *transport.ByteCounter) (*transport.Connection, error) {
	remaining := c.Deadline - time.Since(start)
	if remaining <= 0 {
		return nil, transport.ErrConnectionClosed
	}

	rctx, cancel := context.WithTimeout(ctx, remaining)
	defer cancel()

	conn, err := backoff.Retry(rctx, func() (*transport.Connection, error) {
		conn, err := c.Connector.Handshake(rctx, c.URI.Addr, c.Protocol, counter)
		if err != nil {
			c.Logger.Debug().Err(err).Str("addr", c.URI.Addr).Msg("connect attempt failed, retrying")
			return nil, err
		}
		return conn, nil
	}, backoff.WithBackOff(backoff.NewConstantBackOff(reconnectInterval)))
	if err != nil {
		return nil, transport.ErrConnectionClosed
	}

	return conn, nil
}
