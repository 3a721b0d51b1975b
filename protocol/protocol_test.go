package protocol

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobias/nobias/uri"
)

func TestHTTP1BuildRequestUsesPathAndHostHeader(t *testing.T) {
	u := &uri.ParsedURI{Scheme: uri.HTTP, Host: "example.com", Port: "8080", Path: "/a"}
	headers := http.Header{"X-Test": []string{"1"}}

	req, err := HTTP1{}.BuildRequest(u, headers)
	require.NoError(t, err)

	assert.Equal(t, "/a", req.URL.Path)
	assert.Equal(t, "example.com:8080", req.Host)
	assert.Equal(t, "1", req.Header.Get("X-Test"))
}

func TestHTTP2BuildRequestUsesFullURLNoHostHeader(t *testing.T) {
	u := &uri.ParsedURI{Scheme: uri.HTTPS, Host: "example.com", Port: "443", Path: "/a"}

	req, err := HTTP2{}.BuildRequest(u, http.Header{})
	require.NoError(t, err)

	assert.Equal(t, "example.com", req.URL.Host)
	assert.Equal(t, "/a", req.URL.Path)
	assert.Empty(t, req.Host)
}

func TestALPNProtocols(t *testing.T) {
	assert.Equal(t, []string{"http/1.1"}, HTTP1{}.ALPNProtocols())
	assert.Equal(t, []string{"h2"}, HTTP2{}.ALPNProtocols())
	assert.False(t, HTTP1{}.IsHTTP2())
	assert.True(t, HTTP2{}.IsHTTP2())
}
