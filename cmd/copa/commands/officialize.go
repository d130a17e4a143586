package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/internal/period"
)

var (
	officializePeriodID     int64
	officializeWinnerID     int64
	officializeUser         string
	officializeTieMarker    string
	officializeJustify      string
)

// officializeCmd closes a PRE_CLOSED period from the CLI. Meant for
// operational use; the normal path is the API called by the back office.
var officializeCmd = &cobra.Command{
	Use:   "officialize",
	Short: "Officialize (close) a pre-closed period",
	Long: `Closes a PRE_CLOSED period, recording the winning sector, the acting
user and the officialization timestamp in one atomic commit.

The winner must belong to the top score group of the period's ranking.
When the top score is tied, the chosen sector must be one of the tied
sectors.`,
	RunE: runOfficialize,
}

func init() {
	rootCmd.AddCommand(officializeCmd)

	officializeCmd.Flags().Int64Var(&officializePeriodID, "period", 0, "period id to close")
	officializeCmd.Flags().Int64Var(&officializeWinnerID, "winner", 0, "winning sector id")
	officializeCmd.Flags().StringVar(&officializeUser, "user", "", "acting director user id")
	officializeCmd.Flags().StringVar(&officializeTieMarker, "tie-resolved-by", "", "tie resolution marker (optional)")
	officializeCmd.Flags().StringVar(&officializeJustify, "justification", "", "justification text (optional)")

	_ = officializeCmd.MarkFlagRequired("period")
	_ = officializeCmd.MarkFlagRequired("winner")
	_ = officializeCmd.MarkFlagRequired("user")
}

func runOfficialize(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}
	defer app.Close()

	// The CLI runs inside the operations perimeter, so the acting user
	// is granted the director role directly. The API path receives
	// roles from the gateway instead.
	actor := contracts.Principal{
		ID:    officializeUser,
		Roles: []string{period.DirectorRole},
	}

	closed, err := app.controller.Officialize(context.Background(), period.OfficializeInput{
		PeriodID:        officializePeriodID,
		WinningSectorID: officializeWinnerID,
		Actor:           actor,
		TieResolvedBy:   officializeTieMarker,
		Justification:   officializeJustify,
	})
	if err != nil {
		if verr, ok := contracts.AsValidation(err); ok {
			return fmt.Errorf("officialization rejected (%s): %s", verr.Rule, verr.Message)
		}
		return fmt.Errorf("officialize period: %w", err)
	}

	app.ranking.InvalidateMonth(context.Background(), closed.MonthKey)

	fmt.Printf("Period %s closed, winner sector %d, officialized by %s\n",
		closed.MonthKey, *closed.WinningSectorID, *closed.OfficializedBy)
	if closed.TieResolution != nil {
		fmt.Printf("Tie resolution: %s\n", *closed.TieResolution)
	}
	return nil
}
