package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/copa/internal/contracts"
)

// schedulerCmd manages the transition scheduler from the CLI.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Transition scheduler control",
	Long: `Controls the automatic period transition scheduler.

Subcommands:
  start   - run the scheduler daemon
  status  - show scheduler configuration
  run     - execute one transition run immediately

Example:
  go run ./cmd/copa scheduler start
  go run ./cmd/copa scheduler run --user ops`,
}

var schedulerRunUser string

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Run the scheduler daemon",
		Long: `Starts the transition scheduler and blocks until interrupted.

Each daily run pre-closes ACTIVE periods whose end date has passed and
creates the following month's PLANNING period. Stop with Ctrl+C.`,
		RunE: runSchedulerDaemon,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show scheduler configuration",
		RunE:  showSchedulerStatus,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Execute one transition run immediately",
		RunE:  runSchedulerOnce,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerRunCmd.Flags().StringVar(&schedulerRunUser, "user", "", "operator user id recorded in the audit trail")
	_ = schedulerRunCmd.MarkFlagRequired("user")
}

func runSchedulerDaemon(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	status := app.scheduler.Status()
	fmt.Printf("Scheduler started: daily at %s (%s)\n", status.TransitionTime, status.Timezone)
	if status.NextRun != nil {
		fmt.Printf("Next run: %s\n", status.NextRun)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	app.scheduler.Stop()
	return nil
}

func showSchedulerStatus(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}
	defer app.Close()

	status := app.scheduler.Status()
	fmt.Printf("Active:          %t\n", status.Active)
	fmt.Printf("Run in progress: %t\n", status.RunInProgress)
	fmt.Printf("Transition time: %s (%s)\n", status.TransitionTime, status.Timezone)
	return nil
}

func runSchedulerOnce(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}
	defer app.Close()

	actor := contracts.Principal{ID: schedulerRunUser, Roles: []string{"operator"}}
	if err := app.scheduler.RunOnce(context.Background(), actor); err != nil {
		return fmt.Errorf("transition run: %w", err)
	}

	fmt.Println("Transition run completed")
	return nil
}
