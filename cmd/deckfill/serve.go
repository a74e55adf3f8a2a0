package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/server"
)

var (
	serveAddr      string
	serveMaxUpload int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fill and inspect API over HTTP",
	Long: `Serve the fill and inspect API over HTTP.

POST /api/fill and POST /api/inspect take a multipart form with a template
file (or the template_id of an earlier upload) and a context. Images in the
context must be data URIs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload", server.DefaultMaxUploadBytes, "Maximum template size in bytes")
	serveCmd.Flags().Bool("strict", false, "Fail on unresolved relationships, tables and pictures by default")
	serveCmd.Flags().Int("workers", 1, "Number of slides filled concurrently per request")
}

func runServe(cmd *cobra.Command, args []string) error {
	srv := server.New(server.Config{
		Base:           cfg,
		MaxUploadBytes: serveMaxUpload,
	}, logger)

	httpServer := &http.Server{
		Addr:         serveAddr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting deckfill server", zap.String("addr", serveAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
