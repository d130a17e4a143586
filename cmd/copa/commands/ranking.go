package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// rankingCmd computes and prints the ranking for a month.
var rankingCmd = &cobra.Command{
	Use:   "ranking [month]",
	Short: "Compute the ranking for a month (YYYY-MM)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRanking,
}

func init() {
	rootCmd.AddCommand(rankingCmd)
}

func runRanking(cmd *cobra.Command, args []string) error {
	app, err := initApp()
	if err != nil {
		return err
	}
	defer app.Close()

	analysis, err := app.ranking.ComputeForMonth(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("compute ranking: %w", err)
	}

	fmt.Printf("Ranking for %s (evaluated %s)\n\n",
		analysis.MonthKey, analysis.EvaluationDate.Format("2006-01-02"))

	if len(analysis.Entries) == 0 {
		fmt.Println("No active sectors or criteria; ranking is empty")
		return nil
	}

	fmt.Printf("%-5s %-30s %s\n", "Rank", "Sector", "Total")
	for _, entry := range analysis.Entries {
		fmt.Printf("%-5d %-30s %.2f\n", entry.Rank, entry.SectorName, entry.TotalScore)
	}

	if analysis.Ties.HasGlobalTies {
		fmt.Printf("\nTied groups: %d\n", len(analysis.Ties.TiedGroups))
	}
	if analysis.RequiresDirectorDecision {
		group := analysis.Ties.WinnerTieGroup
		fmt.Printf("Winner is contested at score %.2f; a director must pick among:\n", group.Score)
		for _, entry := range group.Sectors {
			fmt.Printf("  - %s (id %d)\n", entry.SectorName, entry.SectorID)
		}
	}

	return nil
}
