package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-matcher/internal/api"
	"github.com/fmuoria/resume-matcher/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(st *state) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the JSON HTTP API.

Endpoints:
  POST /extract       extract fields, education and skills
  POST /compare       score skills against a job description
  POST /graph         build the skill knowledge graph
  POST /analyze       full analysis
  POST /analyze.xlsx  full analysis as an Excel report
  GET  /health        health check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				st.cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), st)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr and PORT")

	return cmd
}

func runServe(ctx context.Context, st *state) error {
	analyzer, annotators, err := st.newAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer annotators.Close()

	cfg := st.cfg.Server
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewServer(analyzer, cfg.MaxBodyBytes).Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info().Str("addr", cfg.Addr).Msg("resume matcher listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
