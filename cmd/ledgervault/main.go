package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ledgervault/internal/apiclient"
	"ledgervault/internal/config"
	"ledgervault/internal/dashboard"
	"ledgervault/internal/logging"
	"ledgervault/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout))
}

func run(in io.Reader, out io.Writer) int {
	cfg := config.Load()
	logger := logging.New(cfg.Logging)

	var recorder metrics.Recorder = metrics.Noop{}
	var shellOpts []dashboard.ShellOption
	if cfg.Client.Metrics {
		registry := prometheus.NewRegistry()
		recorder = metrics.NewPrometheusMetrics(registry)
		shellOpts = append(shellOpts, dashboard.WithGatherer(registry))
	}

	client, err := apiclient.New(cfg.Client.BaseURL,
		apiclient.WithLogger(logger),
		apiclient.WithMetrics(recorder),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create API client: %v\n", err)
		return 1
	}

	app := dashboard.NewApp(dashboard.Deps{
		API:           client,
		Logger:        logger,
		Metrics:       recorder,
		ToastDuration: cfg.Client.ToastDuration,
	})
	defer app.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("dashboard starting", "base_url", client.BaseURL())

	shell := dashboard.NewShell(app, in, out, shellOpts...)
	if err := shell.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("dashboard stopped unexpectedly", "error", err)
		return 1
	}
	return 0
}
