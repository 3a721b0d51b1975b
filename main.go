// Command nobias is an HTTP/1.1 and HTTP/2 load generator without
// pipelining bias: N persistent connections across T execution contexts for
// a bounded duration, reporting throughput and latency.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/nobias/nobias/config"
	"github.com/nobias/nobias/control"
	"github.com/nobias/nobias/output"
	"github.com/nobias/nobias/transport"
	"github.com/nobias/nobias/uri"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := newLogger(stderr)

	settings, err := config.Load(args, logger)
	if err != nil {
		logger.Error().Err(err).Msg("setup error")
		return 1
	}

	if level, err := zerolog.ParseLevel(settings.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	target, err := uri.Parse(ctx, settings.Host)
	if err != nil {
		logger.Error().Err(err).Msg("setup error")
		return 1
	}

	connector, err := buildConnector(target, settings, logger)
	if err != nil {
		logger.Error().Err(err).Msg("setup error")
		return 1
	}

	controller := &control.Controller{
		Settings:  settings,
		URI:       target,
		Connector: connector,
		Renderer:  buildRenderer(settings, stdout),
		Logger:    logger,
	}

	if _, err := controller.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("run failed")
		return 1
	}

	return 0
}

func buildConnector(target *uri.ParsedURI, settings *config.Settings, logger zerolog.Logger) (transport.Connector, error) {
	if target.Scheme != uri.HTTPS {
		return &transport.PlainConnector{Logger: logger}, nil
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("main: loading system trust store: %w", err)
	}

	return &transport.TLSConnector{
		Host:   target.Host,
		Config: &tls.Config{RootCAs: pool},
		Logger: logger,
	}, nil
}

func buildRenderer(settings *config.Settings, stdout io.Writer) output.Renderer {
	if settings.JSON {
		return &output.JSONRenderer{Out: stdout}
	}
	return &output.TextRenderer{Out: stdout}
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}
