package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationSumsSegments(t *testing.T) {
	d, err := ParseDuration("1d2h3m4s")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour+2*time.Hour+3*time.Minute+4*time.Second, d)
}

func TestParseDurationAcceptsSegmentsInAnyOrder(t *testing.T) {
	d, err := ParseDuration("30m2h")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour+30*time.Minute, d)
	assert.Equal(t, 9000*time.Second, d)
}

func TestParseDurationRejectsZeroTotal(t *testing.T) {
	_, err := ParseDuration("0s")
	assert.Error(t, err)
}

func TestParseDurationRejectsNoSegments(t *testing.T) {
	_, err := ParseDuration("banana")
	assert.Error(t, err)
}

func TestParseDurationSimpleSeconds(t *testing.T) {
	d, err := ParseDuration("10s")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}
