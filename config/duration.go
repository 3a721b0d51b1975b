package config

import (
	"fmt"
	"regexp"
	"time"
)

// durationSegment matches one `<N>d`, `<N>h`, `<N>m`, or `<N>s` chunk of the
// duration grammar. Segments may appear in any order and any number of
// times; the total is their sum.
var durationSegment = regexp.MustCompile(`([0-9]+)(d|h|m|s)`)

// ParseDuration sums every matched segment of s. A string with no matching
// segments, or one whose segments sum to zero, is a setup error.
func ParseDuration(s string) (time.Duration, error) {
	matches := durationSegment.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("config: %q contains no duration segments", s)
	}

	var total time.Duration
	for _, m := range matches {
		var n int64
		if _, err := fmt.Sscanf(m[1], "%d", &n); err != nil {
			return 0, fmt.Errorf("config: invalid duration segment %q: %w", m[0], err)
		}

		switch m[2] {
		case "d":
			total += time.Duration(n) * 24 * time.Hour
		case "h":
			total += time.Duration(n) * time.Hour
		case "m":
			total += time.Duration(n) * time.Minute
		case "s":
			total += time.Duration(n) * time.Second
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("config: duration %q totals zero", s)
	}

	return total, nil
}
