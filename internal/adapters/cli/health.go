package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that the daemon is running and responsive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			health, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			if jsonOutput {
				return printJSON(health.Raw)
			}

			fmt.Println("✓ Daemon is healthy")
			fmt.Printf("  Status:    %s\n", health.Status)
			fmt.Printf("  Version:   %s\n", health.Version)
			fmt.Printf("  Uptime:    %s\n", (time.Duration(health.UptimeSeconds) * time.Second).String())
			fmt.Printf("  Solvers:   %d\n", health.Engines)
			fmt.Printf("  Adapters:  %d\n", health.Adapters)

			return nil
		},
	}

	return cmd
}
