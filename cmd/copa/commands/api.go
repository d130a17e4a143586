package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/copa/internal/api"
	"github.com/wonny/copa/internal/api/handlers"
)

// apiCmd starts the HTTP API server together with the transition
// scheduler so a single process covers both surfaces.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the HTTP API server and the transition scheduler.

Endpoints:
  GET  /api/v1/rankings/{month}          ranking + tie analysis
  GET  /api/v1/periods/pending           periods awaiting officialization
  GET  /api/v1/periods/{id}/analysis     fresh analysis for a period
  POST /api/v1/periods/{id}/officialize  close a period
  GET  /api/v1/scheduler/status          scheduler state
  POST /api/v1/scheduler/run             manual transition run

Stop with Ctrl+C.`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer app.scheduler.Stop()

	router := api.NewRouter(
		handlers.NewRankingHandler(app.ranking, app.logger),
		handlers.NewPeriodHandler(app.controller, app.ranking, app.logger),
		handlers.NewSchedulerHandler(app.scheduler, app.logger),
		app.db,
		app.cfg,
		app.logger,
	)
	server := api.New(app.cfg, app.logger, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
