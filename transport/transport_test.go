package transport

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"github.com/nobias/nobias/protocol"
	"github.com/nobias/nobias/uri"
)

func TestPlainConnectorServesHTTP1Requests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	counter := NewByteCounter()
	connector := &PlainConnector{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := connector.Handshake(ctx, ts.Listener.Addr().String(), protocol.HTTP1{}, counter)
	require.NoError(t, err)

	u := &uri.ParsedURI{Scheme: uri.HTTP, Host: "127.0.0.1", Port: "80", Path: "/"}
	req, err := protocol.HTTP1{}.BuildRequest(u, http.Header{})
	require.NoError(t, err)

	resultCh, ok := conn.Enqueue(req)
	require.True(t, ok)

	select {
	case res := <-resultCh:
		require.NoError(t, res.Err)
		assert.Equal(t, http.StatusOK, res.Resp.StatusCode)
		body, err := io.ReadAll(res.Resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
	case <-conn.Done():
		t.Fatal("connection died before request resolved")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for response")
	}

	assert.Greater(t, counter.Load(), uint64(0))
}

func TestPlainConnectorSecondRequestReusesConnection(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	counter := NewByteCounter()
	connector := &PlainConnector{}
	ctx := context.Background()

	conn, err := connector.Handshake(ctx, ts.Listener.Addr().String(), protocol.HTTP1{}, counter)
	require.NoError(t, err)

	u := &uri.ParsedURI{Scheme: uri.HTTP, Host: "127.0.0.1", Port: "80", Path: "/"}

	for i := 0; i < 3; i++ {
		req, err := protocol.HTTP1{}.BuildRequest(u, http.Header{})
		require.NoError(t, err)

		resultCh, ok := conn.Enqueue(req)
		require.True(t, ok)

		res := <-resultCh
		require.NoError(t, res.Err)
		_, _ = io.Copy(io.Discard, res.Resp.Body)
		res.Resp.Body.Close()
	}

	assert.Equal(t, 3, hits)
}

func TestPlainConnectorDialFailureReturnsError(t *testing.T) {
	connector := &PlainConnector{}
	_, err := connector.Handshake(context.Background(), "127.0.0.1:1", protocol.HTTP1{}, NewByteCounter())
	require.Error(t, err)
}

func TestTLSConnectorNegotiatesH2(t *testing.T) {
	ts := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ts.EnableHTTP2 = true
	require.NoError(t, http2.ConfigureServer(ts.Config, &http2.Server{}))
	ts.StartTLS()
	defer ts.Close()

	counter := NewByteCounter()
	connector := &TLSConnector{
		Host:   "127.0.0.1",
		Config: &tls.Config{InsecureSkipVerify: true},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := connector.Handshake(ctx, ts.Listener.Addr().String(), protocol.HTTP2{}, counter)
	require.NoError(t, err)

	u := &uri.ParsedURI{Scheme: uri.HTTPS, Host: "127.0.0.1", Port: "443", Path: "/"}
	req, err := protocol.HTTP2{}.BuildRequest(u, http.Header{})
	require.NoError(t, err)

	resultCh, ok := conn.Enqueue(req)
	require.True(t, ok)

	select {
	case res := <-resultCh:
		require.NoError(t, res.Err)
		assert.Equal(t, http.StatusOK, res.Resp.StatusCode)
	case <-conn.Done():
		t.Fatal("connection died before request resolved")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")
	}
}

func TestConnectionDoneClosesAfterServerClosesConn(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		c, _, err := hj.Hijack()
		require.NoError(t, err)
		c.Close()
	}))
	defer ts.Close()

	counter := NewByteCounter()
	connector := &PlainConnector{}
	conn, err := connector.Handshake(context.Background(), ts.Listener.Addr().String(), protocol.HTTP1{}, counter)
	require.NoError(t, err)

	u := &uri.ParsedURI{Scheme: uri.HTTP, Host: "127.0.0.1", Port: "80", Path: "/"}
	req, err := protocol.HTTP1{}.BuildRequest(u, http.Header{})
	require.NoError(t, err)

	resultCh, ok := conn.Enqueue(req)
	require.True(t, ok)

	select {
	case res := <-resultCh:
		assert.Error(t, res.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for driver to notice the dead connection")
	}

	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("driver never closed Done() after a fatal I/O error")
	}
}
