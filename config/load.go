package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// Load parses args with cobra/pflag into a fully-resolved Settings,
// optionally overlaying a -f/--config YAML file for any flag the caller did
// not set explicitly on the command line. Every failure here is a setup
// error per spec §7 — invalid CLI, missing host, zero duration.
func Load(args []string, logger zerolog.Logger) (*Settings, error) {
	var (
		threads     int
		connections int
		host        string
		headerArgs  []string
		http2       bool
		durationStr string
		pct         bool
		jsonOut     bool
		rounds      int
		configPath  string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:           "nobias",
		Short:         "HTTP/1.1 and HTTP/2 load generator without pipelining bias",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(*cobra.Command, []string) error { return nil },
	}

	flags := cmd.Flags()
	flags.IntVarP(&threads, "threads", "t", 1, "parallel execution contexts")
	flags.IntVarP(&connections, "connections", "c", 1, "total concurrent connections")
	flags.StringVar(&host, "host", "", "target URL (required)")
	flags.StringArrayVarP(&headerArgs, "header", "H", nil, `repeatable "Name: Value" request header`)
	flags.BoolVar(&http2, "http2", false, "force HTTP/2 (else HTTP/1)")
	flags.StringVarP(&durationStr, "duration", "d", "10s", `run duration, e.g. "2h30m"`)
	flags.BoolVar(&pct, "pct", false, "include percentile table")
	flags.BoolVar(&jsonOut, "json", false, "emit machine-readable output")
	flags.IntVar(&rounds, "rounds", 1, "number of rounds")
	flags.StringVarP(&configPath, "config", "f", "", "optional YAML settings overlay")
	flags.StringVar(&logLevel, "log-level", "info", "debug|info|warn|error")

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, fmt.Errorf("config: parsing arguments: %w", err)
	}

	if configPath != "" {
		overlay, err := loadFileSettings(configPath)
		if err != nil {
			return nil, err
		}
		applyOverlay(overlay, flags, &threads, &connections, &host, &http2, &durationStr, &pct, &jsonOut, &rounds, &headerArgs, &logLevel)
	}

	if host == "" {
		return nil, fmt.Errorf("config: --host is required")
	}
	if threads <= 0 {
		return nil, fmt.Errorf("config: --threads must be positive, got %d", threads)
	}
	if connections <= 0 {
		return nil, fmt.Errorf("config: --connections must be positive, got %d", connections)
	}
	if rounds <= 0 {
		return nil, fmt.Errorf("config: --rounds must be positive, got %d", rounds)
	}

	duration, err := ParseDuration(durationStr)
	if err != nil {
		return nil, err
	}

	return &Settings{
		Threads:     threads,
		Connections: connections,
		Host:        host,
		HTTP2:       http2,
		Duration:    duration,
		Percentiles: pct,
		JSON:        jsonOut,
		Rounds:      rounds,
		Headers:     ParseHeaders(headerArgs, logger),
		LogLevel:    logLevel,
	}, nil
}

func loadFileSettings(path string) (*FileSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var fs FileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &fs, nil
}

// applyOverlay fills in any field present in fs whose corresponding flag
// was left at its default (not set explicitly on the command line). Flags
// always win over file values per spec's ambient config rule.
func applyOverlay(fs *FileSettings, flags *pflag.FlagSet, threads, connections *int, host *string, http2 *bool, duration *string, pct, jsonOut *bool, rounds *int, headers *[]string, logLevel *string) {
	if fs.Threads != nil && !flags.Changed("threads") {
		*threads = *fs.Threads
	}
	if fs.Connections != nil && !flags.Changed("connections") {
		*connections = *fs.Connections
	}
	if fs.Host != nil && !flags.Changed("host") {
		*host = *fs.Host
	}
	if fs.HTTP2 != nil && !flags.Changed("http2") {
		*http2 = *fs.HTTP2
	}
	if fs.Duration != nil && !flags.Changed("duration") {
		*duration = *fs.Duration
	}
	if fs.Percentiles != nil && !flags.Changed("pct") {
		*pct = *fs.Percentiles
	}
	if fs.JSON != nil && !flags.Changed("json") {
		*jsonOut = *fs.JSON
	}
	if fs.Rounds != nil && !flags.Changed("rounds") {
		*rounds = *fs.Rounds
	}
	if fs.Headers != nil && !flags.Changed("header") {
		*headers = *fs.Headers
	}
	if fs.LogLevel != nil && !flags.Changed("log-level") {
		*logLevel = *fs.LogLevel
	}
}
