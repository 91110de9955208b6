package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/orthogroup/logger"
	"github.com/yumyai/orthogroup/pkg/handler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the HTTP API

  GET  /api/v1/health
  GET  /api/v1/groups?gene_id=
  GET  /api/v1/resolve?uniprot_id=[&duplicate_action=first|longest]
  POST /api/v1/jobs          {"gene_id": "...", "uniprot_id": "...", "level": "..."}
  GET  /api/v1/jobs/{job_id}
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		workers, _ := cmd.Flags().GetInt("workers")

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler.NewRouter(handler.NewAppContext(ctx, a.pipe, workers)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("Start:", zap.String("Version", VERSION))
			logger.Info("Server starting", zap.String("addr", addr))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "0.0.0.0:8080", "listen address")
	serveCmd.Flags().IntP("workers", "j", 2, "number of jobs run at once")
}
