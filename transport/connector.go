package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/nobias/nobias/protocol"
)

// Connector establishes a transport for a single connection and performs
// the HTTP handshake, returning a Connection handle. Handshake is retried by
// the caller (bench.Client's connectRetry) on failure; Connector itself
// never retries.
type Connector interface {
	Handshake(ctx context.Context, addr string, proto protocol.Protocol, counter *ByteCounter) (*Connection, error)
}

// PlainConnector dials a bare TCP connection.
type PlainConnector struct {
	Dialer net.Dialer
	Logger zerolog.Logger
}

var _ Connector = (*PlainConnector)(nil)

func (p *PlainConnector) Handshake(ctx context.Context, addr string, proto protocol.Protocol, counter *ByteCounter) (*Connection, error) {
	c, err := p.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		p.Logger.Debug().Err(err).Str("addr", addr).Msg("dial failed")
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return handshake(newCountingConn(c, counter), proto, counter)
}

// TLSConnector dials TCP then performs a TLS handshake to host using the
// protocol strategy's ALPN list. Root trust store acquisition is treated
// as an external collaborator (spec scope); Config is built by the caller
// (typically from x509.SystemCertPool) and passed in as-is.
type TLSConnector struct {
	Dialer net.Dialer
	Host   string
	Config *tls.Config
	Logger zerolog.Logger
}

var _ Connector = (*TLSConnector)(nil)

func (t *TLSConnector) Handshake(ctx context.Context, addr string, proto protocol.Protocol, counter *ByteCounter) (*Connection, error) {
	raw, err := t.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		t.Logger.Debug().Err(err).Str("addr", addr).Msg("dial failed")
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}

	cfg := t.Config.Clone()
	cfg.ServerName = t.Host
	cfg.NextProtos = proto.ALPNProtocols()

	tlsConn := tls.Client(newCountingConn(raw, counter), cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		raw.Close()
		t.Logger.Debug().Err(err).Str("host", t.Host).Msg("tls handshake failed")
		return nil, fmt.Errorf("transport: tls handshake with %s: %w", t.Host, err)
	}

	negotiated := tlsConn.ConnectionState().NegotiatedProtocol
	if !alpnOK(negotiated, proto.ALPNProtocols()) {
		tlsConn.Close()
		t.Logger.Warn().Str("negotiated", negotiated).Strs("wanted", proto.ALPNProtocols()).Msg("ALPN mismatch")
		return nil, fmt.Errorf("transport: ALPN mismatch: negotiated %q, wanted one of %v", negotiated, proto.ALPNProtocols())
	}

	return handshake(tlsConn, proto, counter)
}

func alpnOK(negotiated string, offered []string) bool {
	for _, o := range offered {
		if o == negotiated {
			return true
		}
	}
	return false
}

// handshake spawns the connection driver appropriate to proto and returns
// the Connection handle the benchmark client races against.
func handshake(c net.Conn, proto protocol.Protocol, counter *ByteCounter) (*Connection, error) {
	conn := newConnection(counter)

	if proto.IsHTTP2() {
		go runH2Driver(c, conn.submit, conn.stop, conn.done)
	} else {
		go runH1Driver(c, conn.submit, conn.stop, conn.done)
	}

	return conn, nil
}
