// Command msn-log inspects protocol capture files written by msn-node.
//
// Usage:
//
//	msn-log view <file> [--layer mlme|mcps|nwk] [--direction in|out] [--category primitive|state|error] [--node ext] [--primitive name] [--status name] [--peer addr]
//	msn-log stats <file>
//	msn-log export <file> [--format jsonl|csv] [-o output]
//	msn-log filter <file> -o output [filter flags]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msn-network/msn-go/cmd/msn-log/commands"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "msn-log: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "msn-log",
		Short:         "Inspect msn-node protocol captures",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(viewCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(filterCmd())
	return root
}

func addFilterFlags(cmd *cobra.Command, opts *commands.FilterOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.Node, "node", "", "Only events captured by this node (extended address)")
	f.StringVar(&opts.Attempt, "attempt", "", "Only events of this join attempt")
	f.StringVar(&opts.Layer, "layer", "", "Filter by layer: mlme, mcps, nwk")
	f.StringVar(&opts.Direction, "direction", "", "Filter by direction: in, out")
	f.StringVar(&opts.Category, "category", "", "Filter by category: primitive, state, error")
	f.StringVar(&opts.Primitive, "primitive", "", "Filter by primitive name")
	f.StringVar(&opts.Status, "status", "", "Filter by primitive status, e.g. NO_ACK")
	f.StringVar(&opts.Peer, "peer", "", "Filter by remote address")
	f.StringVar(&opts.TimeStart, "time-start", "", "Events at or after this RFC3339 time")
	f.StringVar(&opts.TimeEnd, "time-end", "", "Events before this RFC3339 time")
}

func viewCmd() *cobra.Command {
	var opts commands.FilterOptions
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Display events in human-readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Build()
			if err != nil {
				return err
			}
			return commands.RunView(args[0], filter, cmd.OutOrStdout())
		},
	}
	addFilterFlags(cmd, &opts)
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Show statistics about a capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunStats(args[0], cmd.OutOrStdout())
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		opts   commands.FilterOptions
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export events as JSON lines or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Build()
			if err != nil {
				return err
			}
			return commands.RunExport(args[0], format, output, filter, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&format, "format", "jsonl", "Output format: jsonl, csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	addFilterFlags(cmd, &opts)
	return cmd
}

func filterCmd() *cobra.Command {
	var (
		opts   commands.FilterOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "filter <file>",
		Short: "Write matching events to a new capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Build()
			if err != nil {
				return err
			}
			n, err := commands.RunFilter(args[0], output, filter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d events to %s\n", n, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output capture file")
	_ = cmd.MarkFlagRequired("output")
	addFilterFlags(cmd, &opts)
	return cmd
}
