package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewMatrixCommand creates the matrix command
func NewMatrixCommand() *cobra.Command {
	var requestFile string

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Compute a travel matrix through the daemon",
		Long: `Submit a matrix request to the daemon and print the result summary.

The request file names the adapter (euclidean, haversine, localgraph, google,
ors, ...) plus origins, destinations, mode and adapter parameters. Use "-" to
read the request from stdin.

Examples:
  routingctl matrix -f matrix.json
  routingctl matrix -f matrix.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readRequestFile(requestFile)
			if err != nil {
				return err
			}

			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			result, err := client.ComputeMatrix(ctx, payload)
			if err != nil {
				return fmt.Errorf("matrix computation failed: %w", err)
			}

			if jsonOutput {
				return printJSON(result.Raw)
			}

			rows, cols := 0, 0
			hasDurations := false
			if result.Matrix != nil {
				rows = len(result.Matrix.Distances)
				if rows > 0 {
					cols = len(result.Matrix.Distances[0])
				}
				hasDurations = len(result.Matrix.Durations) > 0
			}

			fmt.Println("✓ Matrix computed")
			if result.Adapter != "" {
				fmt.Printf("  Adapter:    %s\n", result.Adapter)
			}
			if result.Mode != "" {
				fmt.Printf("  Mode:       %s\n", result.Mode)
			}
			fmt.Printf("  Size:       %dx%d\n", rows, cols)
			fmt.Printf("  Durations:  %t\n", hasDurations)

			return nil
		},
	}

	cmd.Flags().StringVarP(&requestFile, "file", "f", "", "Path to the matrix request JSON (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
