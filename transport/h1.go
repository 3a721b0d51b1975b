package transport

import (
	"bufio"
	"net"
	"net/http"
)

// runH1Driver is the background task that owns an HTTP/1.1 connection. It
// pumps jobs off the submit channel one at a time — there is no
// pipelining — writing the request and reading the response head
// synchronously before accepting the next job. Any write or read failure
// on the shared stream is connection-fatal: the driver reports it to the
// in-flight job and exits, closing done. A close on stop ends the driver
// the same way, for a connection the caller is done with rather than one
// that failed.
func runH1Driver(c net.Conn, submit chan *job, stop <-chan struct{}, done chan struct{}) {
	defer close(done)
	defer c.Close()

	br := bufio.NewReader(c)

	for {
		select {
		case j := <-submit:
			resp, err := doH1RoundTrip(c, br, j.req)
			j.result <- Result{Resp: resp, Err: err}
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func doH1RoundTrip(c net.Conn, br *bufio.Reader, req *http.Request) (*http.Response, error) {
	if err := req.Write(c); err != nil {
		return nil, err
	}
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
