package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List the registered solvers and matrix adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			solvers, err := client.ListSolvers(ctx)
			if err != nil {
				return fmt.Errorf("failed to list solvers: %w", err)
			}
			adapters, err := client.ListAdapters(ctx)
			if err != nil {
				return fmt.Errorf("failed to list adapters: %w", err)
			}

			if jsonOutput {
				merged, err := json.Marshal(map[string][]string{
					"solvers":  solvers,
					"adapters": adapters,
				})
				if err != nil {
					return fmt.Errorf("failed to encode status: %w", err)
				}
				return printJSON(merged)
			}

			fmt.Printf("Solvers (%d):\n", len(solvers))
			for _, name := range solvers {
				fmt.Printf("  %s\n", name)
			}
			fmt.Printf("\nAdapters (%d):\n", len(adapters))
			for _, name := range adapters {
				fmt.Printf("  %s\n", name)
			}

			return nil
		},
	}
}
