package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewCapabilitiesCommand creates the capabilities command
func NewCapabilitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show what each solver and adapter can do",
		Long: `Show the capability sheet of every registered solver (problem classes,
coordinate mode, drop support) and matrix adapter (metrics provided).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			result, err := client.Capabilities(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch capabilities: %w", err)
			}

			if jsonOutput {
				return printJSON(result.Raw)
			}

			fmt.Printf("%-15s %-12s %-8s %s\n", "SOLVER", "COORDS", "DROP", "PROBLEMS")
			fmt.Println("────────────────────────────────────────────────────────────")
			for _, s := range result.Solvers {
				problems := make([]string, 0, len(s.Problems))
				for name := range s.Problems {
					problems = append(problems, name)
				}
				sort.Strings(problems)

				fmt.Printf("%-15s %-12s %-8s %s\n",
					s.Name,
					yesNo(s.CoordinateMode),
					yesNo(s.SupportsDrop),
					strings.Join(problems, ", "),
				)
			}

			fmt.Printf("\n%-15s %s\n", "ADAPTER", "PROVIDES")
			fmt.Println("────────────────────────────────────")
			for _, a := range result.Adapters {
				fmt.Printf("%-15s %s\n", a.Name, strings.Join(a.Provides, ", "))
			}

			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
