package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewSolveCommand creates the solve command
func NewSolveCommand() *cobra.Command {
	var requestFile string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Submit a solve request to the daemon",
		Long: `Submit a routing problem to the daemon and print the resulting tours.

The request file carries the full solver request JSON: engine name, waypoints
or a precomputed matrix, fleet options and engine parameters. Use "-" to read
the request from stdin.

Examples:
  routingctl solve -f request.json
  routingctl solve -f - < request.json
  routingctl solve -f request.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readRequestFile(requestFile)
			if err != nil {
				return err
			}

			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			result, err := client.Solve(ctx, payload)
			if err != nil {
				return fmt.Errorf("solve failed: %w", err)
			}

			if jsonOutput {
				return printJSON(result.Raw)
			}

			if result.Data == nil || result.Status != "success" {
				return fmt.Errorf("solve failed: %s", result.Message)
			}

			routes := result.Data
			fmt.Println("✓ Solve succeeded")
			fmt.Printf("  Request ID:  %s\n", result.RequestID)
			if routes.Message != "" {
				fmt.Printf("  Message:     %s\n", routes.Message)
			}
			fmt.Println()

			fmt.Printf("%-15s %-8s %-12s %s\n", "VEHICLE", "STOPS", "DISTANCE", "DURATION")
			fmt.Println("─────────────────────────────────────────────────")
			for _, route := range routes.Routes {
				stops := len(route.WaypointIDs)
				if stops >= 2 {
					stops -= 2 // depot at both ends
				}
				fmt.Printf("%-15s %-8d %-12s %s\n",
					truncate(route.VehicleID, 15),
					stops,
					formatMeters(route.TotalDistance),
					formatSeconds(route.TotalDuration),
				)
			}

			fmt.Printf("\nTotal: %d routes, %s", len(routes.Routes), formatMeters(routes.TotalDistance))
			if routes.TotalDuration != nil {
				fmt.Printf(", %s", formatSeconds(routes.TotalDuration))
			}
			fmt.Println()
			if len(routes.Dropped) > 0 {
				fmt.Printf("Dropped nodes: %v\n", routes.Dropped)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&requestFile, "file", "f", "", "Path to the solve request JSON (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
