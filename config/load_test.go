package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	s, err := Load([]string{"--host", "http://example.com"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Threads)
	assert.Equal(t, 1, s.Connections)
	assert.Equal(t, "http://example.com", s.Host)
	assert.Equal(t, 10*time.Second, s.Duration)
	assert.Equal(t, 1, s.Rounds)
	assert.False(t, s.HTTP2)
}

func TestLoadParsesShortAndLongFlags(t *testing.T) {
	s, err := Load([]string{
		"--host", "http://example.com",
		"-t", "4",
		"-c", "16",
		"-d", "2h30m",
		"--http2",
		"--pct",
		"--json",
		"--rounds", "3",
		"-H", "X-Trace: abc",
		"-H", "malformed",
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 4, s.Threads)
	assert.Equal(t, 16, s.Connections)
	assert.Equal(t, 9000*time.Second, s.Duration)
	assert.True(t, s.HTTP2)
	assert.True(t, s.Percentiles)
	assert.True(t, s.JSON)
	assert.Equal(t, 3, s.Rounds)
	assert.Equal(t, "abc", s.Headers.Get("X-Trace"))
}

func TestLoadRequiresHost(t *testing.T) {
	_, err := Load([]string{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadRejectsZeroDuration(t *testing.T) {
	_, err := Load([]string{"--host", "http://example.com", "-d", "0s"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadFileOverlayFillsUnsetFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threads: 8\nconnections: 32\nhttp2: true\n"), 0o644))

	s, err := Load([]string{"--host", "http://example.com", "-f", path}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 8, s.Threads)
	assert.Equal(t, 32, s.Connections)
	assert.True(t, s.HTTP2)
}

func TestLoadExplicitFlagWinsOverFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threads: 8\n"), 0o644))

	s, err := Load([]string{"--host", "http://example.com", "-f", path, "-t", "2"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Threads)
}
