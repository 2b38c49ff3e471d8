package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausewise/internal/adapters/driving/api"
	"github.com/custodia-labs/clausewise/internal/core/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API serving document analysis, history, chat,
translation and provider status.

Endpoints:
  GET    /health
  GET    /models/status
  POST   /analyze                 (multipart field "file")
  GET    /analyses/history
  GET    /analyses/{id}
  DELETE /analyses/{id}
  POST   /chat
  GET    /chat/sessions/{id}
  GET    /suggested-questions?analysis_id=
  POST   /translate

The listen address defaults to server.addr from the configuration.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	cfg := domain.DefaultConfig()
	if runtimeConfig != nil {
		cfg = *runtimeConfig
	}
	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := api.NewServer(api.Ports{
		Analysis:    analysisService,
		Chat:        chatService,
		Status:      statusService,
		Translation: translationService,
	}, version, cfg.MaxUploadBytes)

	if err := server.Start(addr); err != nil {
		return err
	}
	cmd.Printf("clausewise API listening on http://%s\n", server.Addr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Wait(ctx)
}
