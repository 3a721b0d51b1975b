package transport

import (
	"net"
	"sync/atomic"
)

// ByteCounter is a shared, atomically-updated tally of bytes read off a
// connection. It is created once per benchmark client and handed to every
// countingConn that client's connector builds, so the total survives
// reconnects.
type ByteCounter struct {
	n atomic.Uint64
}

// NewByteCounter returns a zeroed counter.
func NewByteCounter() *ByteCounter {
	return &ByteCounter{}
}

// Add increments the counter by delta. Uses release-on-increment ordering;
// Load uses acquire, so a concurrent reader observes a monotonic, if
// possibly slightly stale, value.
func (b *ByteCounter) Add(delta uint64) {
	b.n.Add(delta)
}

// Load returns the current total.
func (b *ByteCounter) Load() uint64 {
	return b.n.Load()
}

// countingConn transparently wraps a net.Conn, accumulating every
// successfully-read byte into a shared counter. Writes pass through
// uncounted — the benchmark measures bytes received from the server.
type countingConn struct {
	net.Conn
	counter *ByteCounter
}

func newCountingConn(c net.Conn, counter *ByteCounter) *countingConn {
	return &countingConn{Conn: c, counter: counter}
}

func (c *countingConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if n > 0 {
		c.counter.Add(uint64(n))
	}
	return n, err
}
