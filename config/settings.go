package config

import (
	"net/http"
	"time"
)

// Settings is the fully-resolved, immutable configuration for one benchmark
// invocation. It mirrors spec.md's BenchmarkSettings entity.
type Settings struct {
	Threads     int
	Connections int
	Host        string
	HTTP2       bool
	Duration    time.Duration
	Percentiles bool
	JSON        bool
	Rounds      int
	Headers     http.Header

	LogLevel string
}

// FileSettings is the optional YAML overlay loaded from -f/--config. Every
// field is a pointer so the loader can tell "absent from the file" apart
// from "explicitly zero" — only fields present in the file participate in
// the merge, and only when the corresponding flag was not explicitly set on
// the command line.
type FileSettings struct {
	Threads     *int      `yaml:"threads"`
	Connections *int      `yaml:"connections"`
	Host        *string   `yaml:"host"`
	HTTP2       *bool     `yaml:"http2"`
	Duration    *string   `yaml:"duration"`
	Percentiles *bool     `yaml:"pct"`
	JSON        *bool     `yaml:"json"`
	Rounds      *int      `yaml:"rounds"`
	Headers     *[]string `yaml:"headers"`
	LogLevel    *string   `yaml:"log_level"`
}
