package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	daemonAddr string
	verbose    bool
	jsonOutput bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "routingctl",
		Short: "Routing CLI - Interact with the routing daemon",
		Long: `Routing CLI submits solve and matrix requests to the routing daemon
over HTTP and inspects its benchmark library and solve journal.

Examples:
  routingctl solve -f request.json
  routingctl matrix -f matrix.json
  routingctl benchmarks list
  routingctl benchmarks files --dataset solomon --limit 20
  routingctl benchmarks load A-n32-k5 --dataset cvrplib
  routingctl runs --limit 10
  routingctl capabilities
  routingctl health`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Global setup (if needed)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr", getDefaultDaemonAddr(),
		"Daemon HTTP address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every HTTP request to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Print raw JSON responses instead of formatted output")

	// Add command groups
	rootCmd.AddCommand(NewSolveCommand())
	rootCmd.AddCommand(NewMatrixCommand())
	rootCmd.AddCommand(NewBenchmarksCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewCapabilitiesCommand())
	rootCmd.AddCommand(NewRunsCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// getDefaultDaemonAddr returns the default daemon address
func getDefaultDaemonAddr() string {
	if addr := os.Getenv("ROUTING_ADDR"); addr != "" {
		return addr
	}
	return "http://127.0.0.1:8095"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
