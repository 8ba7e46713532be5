package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent solve runs from the journal",
		Long:  `Show the newest journaled solve runs, most recent first, plus per-engine usage counts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			result, err := client.RecentRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to fetch runs: %w", err)
			}

			if jsonOutput {
				return printJSON(result.Raw)
			}

			if len(result.Runs) == 0 {
				fmt.Println("No runs journaled yet")
				return nil
			}

			fmt.Printf("%-14s %-14s %-9s %-6s %-9s %-11s %-9s %s\n",
				"REQUEST ID", "ENGINE", "STATUS", "NODES", "VEHICLES", "DISTANCE", "TIME", "CREATED")
			fmt.Println("─────────────────────────────────────────────────────────────────────────────────────────")
			for _, run := range result.Runs {
				fmt.Printf("%-14s %-14s %-9s %-6d %-9d %-11s %-9s %s\n",
					truncate(run.RequestID, 14),
					truncate(run.Engine, 14),
					run.Status,
					run.Waypoints,
					run.VehiclesUsed,
					formatMeters(run.TotalDistance),
					(time.Duration(run.SolveMillis) * time.Millisecond).String(),
					run.CreatedAt.Format("2006-01-02 15:04:05"),
				)
			}

			fmt.Printf("\nTotal: %d runs\n", len(result.Runs))
			if len(result.EngineCounts) > 0 {
				engines := make([]string, 0, len(result.EngineCounts))
				for name := range result.EngineCounts {
					engines = append(engines, name)
				}
				sort.Strings(engines)

				parts := make([]string, 0, len(engines))
				for _, name := range engines {
					parts = append(parts, fmt.Sprintf("%s=%d", name, result.EngineCounts[name]))
				}
				fmt.Printf("Engine usage: %s\n", strings.Join(parts, " "))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum runs to return (daemon default 20, max 500)")

	return cmd
}
