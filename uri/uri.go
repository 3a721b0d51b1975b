// Package uri resolves a benchmark target once, up front, so reconnects
// during a run never repeat DNS work.
package uri

import (
	"context"
	"fmt"
	"net"
	gourl "net/url"
	"time"
)

// Scheme is the set of schemes this benchmark understands.
type Scheme int

const (
	HTTP Scheme = iota
	HTTPS
)

func (s Scheme) String() string {
	if s == HTTPS {
		return "https"
	}
	return "http"
}

// ParsedURI is the resolved, immutable description of a benchmark target.
// It is built once at run start and shared read-only by every client.
type ParsedURI struct {
	Scheme Scheme
	Host   string
	Port   string
	Path   string

	// Addr is the single resolved "ip:port" dialed on every (re)connect.
	Addr string
}

// HostHeader is the value HTTP/1 requests carry in their explicit Host
// header: host, plus ":port" only when the port isn't the scheme default.
func (p *ParsedURI) HostHeader() string {
	if (p.Scheme == HTTP && p.Port == "80") || (p.Scheme == HTTPS && p.Port == "443") {
		return p.Host
	}
	return net.JoinHostPort(p.Host, p.Port)
}

// Parse parses raw and resolves its host to a single socket address.
// Resolution happens exactly once; callers cache the result for the life
// of the run. A malformed URL, unknown scheme, or DNS failure is fatal.
func Parse(ctx context.Context, raw string) (*ParsedURI, error) {
	u, err := gourl.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("uri: invalid url %q: %w", raw, err)
	}

	var scheme Scheme
	switch u.Scheme {
	case "http", "":
		scheme = HTTP
	case "https":
		scheme = HTTPS
	default:
		return nil, fmt.Errorf("uri: unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("uri: missing host in %q", raw)
	}

	port := u.Port()
	if port == "" {
		if scheme == HTTPS {
			port = "443"
		} else {
			port = "80"
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	addr, err := resolve(ctx, host, port)
	if err != nil {
		return nil, fmt.Errorf("uri: dns lookup of %q failed: %w", host, err)
	}

	return &ParsedURI{
		Scheme: scheme,
		Host:   host,
		Port:   port,
		Path:   path,
		Addr:   addr,
	}, nil
}

func resolve(ctx context.Context, host, port string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("no addresses found for %q", host)
	}
	return net.JoinHostPort(ips[0].IP.String(), port), nil
}

// URL reconstructs the full request URI string (used for HTTP/2 requests,
// which carry the full target rather than a bare path).
func (p *ParsedURI) URL() string {
	return fmt.Sprintf("%s://%s%s", p.Scheme, p.HostHeader(), p.Path)
}
