// Package transport establishes connections for a single benchmark client:
// plain TCP or TCP+TLS, the HTTP/1 or HTTP/2 handshake, and the
// request-submission/driver-completion handle pair the hot loop races
// against on every iteration.
package transport

import (
	"errors"
	"net/http"
	"sync"
)

// ErrConnectionClosed reports that no usable connection is available:
// bench.Client's reconnect loop returns it once the run deadline passes
// without a successful handshake.
var ErrConnectionClosed = errors.New("transport: connection closed")

// job is one outstanding request handed to a connection's driver goroutine.
type job struct {
	req    *http.Request
	result chan Result
}

// Result is what a connection's driver reports back for one submitted
// request: either a response head (body still open for the caller to
// drain) or a transport-level error.
type Result struct {
	Resp *http.Response
	Err  error
}

// Connection is the request-submission handle plus the background driver
// task that owns the socket. The driver writes every request and reads
// every response head; the caller reads the body of a returned response.
// Enqueue is the sole client-side ingress.
// Completion of the driver (the done channel closing) means the connection
// is unusable, whether or not any job was in flight at the time.
type Connection struct {
	submit chan *job
	stop   chan struct{}
	done   chan struct{}

	closeOnce sync.Once

	// Bytes is the shared, monotonically increasing count of bytes read
	// from the wire. It is owned by the client and survives the
	// connection being replaced across reconnects.
	Bytes *ByteCounter
}

func newConnection(counter *ByteCounter) *Connection {
	return &Connection{
		submit: make(chan *job),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		Bytes:  counter,
	}
}

// Done is closed exactly once, when the driver task has stopped servicing
// this connection's I/O (success or failure of the underlying transport).
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close tells the driver to stop servicing this connection and release its
// socket. It does not wait for the driver to exit — callers that need that
// guarantee should select on Done() afterward. Close is idempotent and safe
// to call even after the driver has already exited on its own (an I/O
// error, or a GOAWAY on HTTP/2).
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
}

// Enqueue submits req to the driver and returns a channel that will
// receive exactly one result, or ok=false if the driver had already
// exited before the submission was accepted. The caller is expected to
// race the returned channel against Done() — when the request's own I/O
// fails, its error result is sent on the returned channel just before the
// driver exits, so both may be ready at once.
func (c *Connection) Enqueue(req *http.Request) (result <-chan Result, ok bool) {
	j := &job{req: req, result: make(chan Result, 1)}
	select {
	case c.submit <- j:
		return j.result, true
	case <-c.done:
		return nil, false
	}
}
