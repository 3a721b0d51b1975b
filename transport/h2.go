package transport

import (
	"net"

	"golang.org/x/net/http2"
)

// runH2Driver is the background task that owns an HTTP/2 connection. Unlike
// the HTTP/1 driver, the heavy lifting — frame multiplexing, its own read
// loop — is already done by golang.org/x/net/http2's ClientConn; this
// driver's job is only to serialize this spec's one-in-flight-at-a-time
// requests onto it and to notice when the ClientConn can no longer take
// new requests (GOAWAY, peer reset, or the underlying net.Conn dying),
// which is this implementation's analogue of the driver task completing. A
// close on stop ends the driver the same way, for a connection the caller
// is done with rather than one that failed.
func runH2Driver(c net.Conn, submit chan *job, stop <-chan struct{}, done chan struct{}) {
	defer close(done)
	defer c.Close()

	t := &http2.Transport{}
	cc, err := t.NewClientConn(c)
	if err != nil {
		return
	}

	for {
		select {
		case j := <-submit:
			resp, err := cc.RoundTrip(j.req)
			j.result <- Result{Resp: resp, Err: err}

			if !cc.CanTakeNewRequest() {
				return
			}
		case <-stop:
			return
		}
	}
}
