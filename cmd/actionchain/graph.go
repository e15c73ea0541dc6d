package main

import (
	"os"

	"github.com/aretw0/actionchain/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [chain.yaml]",
	Short: "Export the execution trace of a chain",
	Long: `Runs the chain against a scratch in-memory store and prints only the
Mermaid flowchart of the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd, args)
		if err != nil {
			return err
		}
		return cli.Graph(cmd.Context(), opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addChainFlags(graphCmd)
}
