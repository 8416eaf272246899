package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reqvault/reqvault/pkg/capture"
)

var serveListen string

// serveCmd is the Cobra command for "reqvault serve".
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP capture endpoint",
	Long: `Start an HTTP server that snapshots every inbound request into the
log store and replies with a small acknowledgment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cfg, logger, err := newEngine()
		if err != nil {
			return err
		}

		addr := cfg.Listen
		if serveListen != "" {
			addr = serveListen
		}

		ack := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"captured"}` + "\n"))
		})

		server := &http.Server{
			Addr:              addr,
			Handler:           capture.Middleware(engine, logger)(ack),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("capture server listening", "addr", addr, "path", cfg.Path)
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
