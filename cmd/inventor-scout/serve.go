// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meshintel/inventor-scout/internal/pipeline"
	"github.com/meshintel/inventor-scout/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the enrichment pipeline over HTTP",
	Long: `Serve exposes the pipeline as an HTTP API:

  POST /research          stream batch progress as server-sent events
  POST /analyze-inventor  enrich one inventor of a patent
  GET  /export            download the results workbook
  GET  /health            liveness check

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	c, err := buildComponents(cfg, true)
	if err != nil {
		return err
	}
	defer c.Close()

	coord := pipeline.NewCoordinator(c.registry, c.results, log().Named("pipeline"))
	srv := server.New(cfg.Server, coord, c.registry, c.analyzer, c.results, c.cache, log().Named("server"))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log().Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
