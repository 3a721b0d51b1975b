package config

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// ParseHeaders splits each "Name: Value" entry on the first colon and trims
// whitespace around the value. Malformed entries (no colon) are skipped
// with a warning, never a fatal error — per spec §6, a bad -H is a
// diagnostic, not a setup failure.
func ParseHeaders(raw []string, logger zerolog.Logger) http.Header {
	headers := make(http.Header, len(raw))
	for _, entry := range raw {
		idx := strings.IndexByte(entry, ':')
		if idx < 0 {
			logger.Warn().Str("header", entry).Msg("skipping malformed header, expected \"Name: Value\"")
			continue
		}
		name := strings.TrimSpace(entry[:idx])
		value := strings.TrimSpace(entry[idx+1:])
		if name == "" {
			logger.Warn().Str("header", entry).Msg("skipping header with empty name")
			continue
		}
		headers.Add(name, value)
	}
	return headers
}
