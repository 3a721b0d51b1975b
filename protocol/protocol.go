// Package protocol encapsulates the HTTP/1 vs HTTP/2 differences that
// matter to the benchmark core: ALPN negotiation and how a request's
// target/authority is shaped.
package protocol

import (
	"net/http"

	"github.com/nobias/nobias/uri"
)

// Protocol parametrizes the benchmark client over HTTP/1 and HTTP/2.
type Protocol interface {
	// IsHTTP2 reports whether the HTTP handshake should negotiate h2.
	IsHTTP2() bool

	// ALPNProtocols is the ordered ALPN token list offered during a TLS
	// handshake.
	ALPNProtocols() []string

	// BuildRequest shapes an outgoing GET request for the target. H1 sets
	// the request target to the path and an explicit Host header; H2 sets
	// it to the full URL and leaves the authority to the HTTP/2 layer.
	// Both copy user headers verbatim; the body is always empty.
	BuildRequest(u *uri.ParsedURI, headers http.Header) (*http.Request, error)
}

// HTTP1 is the Protocol strategy for plain HTTP/1.1.
type HTTP1 struct{}

var _ Protocol = HTTP1{}

func (HTTP1) IsHTTP2() bool { return false }

func (HTTP1) ALPNProtocols() []string { return []string{"http/1.1"} }

func (HTTP1) BuildRequest(u *uri.ParsedURI, headers http.Header) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, u.Path, nil)
	if err != nil {
		return nil, err
	}
	req.Host = u.HostHeader()
	copyHeaders(req, headers)
	return req, nil
}

// HTTP2 is the Protocol strategy for HTTP/2 over a single connection. Over
// TLS it is negotiated via ALPN "h2"; over plain TCP the connection speaks
// HTTP/2 from the first byte (prior knowledge, no Upgrade exchange).
type HTTP2 struct{}

var _ Protocol = HTTP2{}

func (HTTP2) IsHTTP2() bool { return true }

func (HTTP2) ALPNProtocols() []string { return []string{"h2"} }

func (HTTP2) BuildRequest(u *uri.ParsedURI, headers http.Header) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, u.URL(), nil)
	if err != nil {
		return nil, err
	}
	req.Host = ""
	copyHeaders(req, headers)
	return req, nil
}

func copyHeaders(req *http.Request, headers http.Header) {
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}
