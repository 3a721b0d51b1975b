package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseHeadersSplitsOnFirstColonAndTrims(t *testing.T) {
	headers := ParseHeaders([]string{"X-Trace:   abc:def  "}, zerolog.Nop())
	assert.Equal(t, "abc:def", headers.Get("X-Trace"))
}

func TestParseHeadersSkipsMalformedEntriesWithoutFailing(t *testing.T) {
	headers := ParseHeaders([]string{"no-colon-here", "X-Ok: yes"}, zerolog.Nop())
	assert.Equal(t, "yes", headers.Get("X-Ok"))
	assert.Len(t, headers, 1)
}

func TestParseHeadersSkipsEmptyName(t *testing.T) {
	headers := ParseHeaders([]string{": value"}, zerolog.Nop())
	assert.Len(t, headers, 0)
}

func TestParseHeadersSupportsRepeatedNames(t *testing.T) {
	headers := ParseHeaders([]string{"X-A: 1", "X-A: 2"}, zerolog.Nop())
	assert.Equal(t, []string{"1", "2"}, headers.Values("X-A"))
}
