package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/app"
	"tracker/internal/logging"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI and JSON API (default command)",
	RunE:  runServe,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		f := cmd.Flags()
		f.StringVar(&settings.StaticDir, "static", settings.StaticDir, "Directory holding the built frontend")
		f.StringVar(&settings.CORSOrigin, "cors-origin", settings.CORSOrigin, "Value of Access-Control-Allow-Origin")
		f.StringVar(&serveFlags.addr, "addr", "", "Listen address, overriding server.host and server.port")
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logging.New("server")
	service := openService()

	addr := serveFlags.addr
	if addr == "" {
		server := service.Server()
		addr = net.JoinHostPort(server.Host, strconv.Itoa(server.Port))
	}

	httpServer := app.NewHTTPServer(service, settings.StaticDir, settings.CORSOrigin)
	server := &http.Server{
		Addr:              addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("initiative tracker listening",
			"url", "http://"+addr,
			"config", settings.ConfigPath,
			"static", settings.StaticDir,
			"history", settings.History,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
