package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewBenchmarksCommand creates the benchmarks command with subcommands
func NewBenchmarksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmarks",
		Short: "Browse the daemon's benchmark library",
		Long: `Browse the benchmark datasets served by the daemon: list datasets,
page through files, locate instance/solution pairs and parse instances.

Examples:
  routingctl benchmarks list
  routingctl benchmarks files --dataset solomon --limit 20
  routingctl benchmarks find A-n32-k5
  routingctl benchmarks load C101 --dataset solomon --no-matrix`,
	}

	cmd.AddCommand(newBenchmarksListCommand())
	cmd.AddCommand(newBenchmarksFilesCommand())
	cmd.AddCommand(newBenchmarksFindCommand())
	cmd.AddCommand(newBenchmarksLoadCommand())

	return cmd
}

// newBenchmarksListCommand lists the datasets
func newBenchmarksListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List benchmark datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			result, err := client.ListDatasets(ctx)
			if err != nil {
				return fmt.Errorf("failed to list datasets: %w", err)
			}

			if jsonOutput {
				return printJSON(result.Raw)
			}

			if len(result.Datasets) == 0 {
				fmt.Println("No datasets found")
				return nil
			}

			fmt.Printf("%-30s %s\n", "DATASET", "FILES")
			fmt.Println("─────────────────────────────────────")
			for _, ds := range result.Datasets {
				fmt.Printf("%-30s %d\n", ds.Name, ds.Files)
			}
			fmt.Printf("\nTotal: %d datasets\n", len(result.Datasets))

			return nil
		},
	}
}

// newBenchmarksFilesCommand pages through benchmark files
func newBenchmarksFilesCommand() *cobra.Command {
	var opts ListFilesOptions

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List benchmark files",
		Long:  `List benchmark files across datasets with filtering, sorting and paging.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			result, err := client.ListFiles(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to list files: %w", err)
			}

			if jsonOutput {
				return printJSON(result.Raw)
			}

			if len(result.Items) == 0 {
				fmt.Println("No files found")
				return nil
			}

			fmt.Printf("%-28s %-16s %-10s %s\n", "NAME", "DATASET", "KIND", "SIZE")
			fmt.Println("──────────────────────────────────────────────────────────────")
			for _, f := range result.Items {
				fmt.Printf("%-28s %-16s %-10s %s\n",
					truncate(f.Name, 28),
					truncate(f.Dataset, 16),
					f.Kind,
					formatBytes(f.SizeBytes),
				)
			}
			fmt.Printf("\nShowing %d of %d files (offset %d)\n", len(result.Items), result.Total, result.Offset)

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "Restrict to one dataset")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Substring filter on file names")
	cmd.Flags().StringSliceVar(&opts.Exts, "exts", nil, "Extensions to include (e.g. .vrp,.txt)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Filter by kind (instance or solution)")
	cmd.Flags().StringVar(&opts.SortBy, "sort", "", "Sort key (name or size)")
	cmd.Flags().StringVar(&opts.SortDir, "order", "", "Sort direction (asc or desc)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum files to return")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Paging offset")

	return cmd
}

// newBenchmarksFindCommand locates an instance/solution pair
func newBenchmarksFindCommand() *cobra.Command {
	var dataset string

	cmd := &cobra.Command{
		Use:   "find <instance-name>",
		Short: "Locate an instance file and its reference solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			result, err := client.FindPair(ctx, name, dataset)
			if err != nil {
				return fmt.Errorf("failed to find %s: %w", name, err)
			}

			if jsonOutput {
				return printJSON(result.Raw)
			}

			fmt.Printf("✓ Found pair for %s\n", name)
			fmt.Printf("  Instance:  %s (%s)\n", result.Instance.Path, formatBytes(result.Instance.SizeBytes))
			if result.Solution != nil {
				fmt.Printf("  Solution:  %s (%s)\n", result.Solution.Path, formatBytes(result.Solution.SizeBytes))
			} else {
				fmt.Printf("  Solution:  (none)\n")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "Restrict the search to one dataset")

	return cmd
}

// newBenchmarksLoadCommand parses an instance on the daemon
func newBenchmarksLoadCommand() *cobra.Command {
	var (
		dataset  string
		noMatrix bool
	)

	cmd := &cobra.Command{
		Use:   "load <instance-name>",
		Short: "Parse a benchmark instance on the daemon",
		Long: `Parse a benchmark instance on the daemon and print its summary.

By default the daemon also computes the travel matrix for the instance; pass
--no-matrix to skip that step for large instances.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			client := NewDaemonClient(daemonAddr)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			result, err := client.LoadInstance(ctx, name, dataset, !noMatrix)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", name, err)
			}

			if jsonOutput {
				return printJSON(result.Raw)
			}

			inst := result.Data
			if inst == nil {
				return fmt.Errorf("daemon returned no instance data for %s", name)
			}

			fmt.Printf("✓ Loaded %s\n", inst.Name)
			fmt.Printf("  Format:     %s\n", inst.Format)
			if inst.Comment != "" {
				fmt.Printf("  Comment:    %s\n", truncate(inst.Comment, 60))
			}
			fmt.Printf("  Waypoints:  %d\n", len(inst.Waypoints))
			fmt.Printf("  Vehicles:   %d\n", inst.NumVehicles)
			if inst.Capacity > 0 {
				fmt.Printf("  Capacity:   %d\n", inst.Capacity)
			}
			if inst.Matrix != nil {
				rows := len(inst.Matrix.Distances)
				cols := 0
				if rows > 0 {
					cols = len(inst.Matrix.Distances[0])
				}
				fmt.Printf("  Matrix:     %dx%d\n", rows, cols)
			}
			fmt.Printf("  Instance:   %s\n", result.InstancePath)
			if result.SolutionPath != "" {
				fmt.Printf("  Solution:   %s\n", result.SolutionPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "Restrict the search to one dataset")
	cmd.Flags().BoolVar(&noMatrix, "no-matrix", false, "Skip matrix computation")

	return cmd
}
