// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/meshintel/autoresearcher/internal/server"
	"github.com/meshintel/autoresearcher/internal/store"
	"github.com/meshintel/autoresearcher/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes the research pipeline over HTTP: /plan, /collect, /process,
/search, /stats, and /generate-report, plus /healthz. The server shuts down
gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = viper.GetString("server.addr")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	docs, err := store.New(storeConfig())
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer docs.Close()

	collector := newCollector(retrievalConfig())

	srv := server.New(collector, docs, logger, types.ServerConfig{
		Addr:           addr,
		AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: :8000)")
	rootCmd.AddCommand(serveCmd)
}
