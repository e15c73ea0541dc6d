package main

import (
	"os"

	"github.com/aretw0/actionchain/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [chain.yaml]",
	Short: "Execute a chain",
	Long: `Executes a chain from a file, or the chain named by --chain in the --dir
repository, and prints its resolved result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd, args)
		if err != nil {
			return err
		}
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Trace, _ = cmd.Flags().GetBool("trace")
		opts.Watch, _ = cmd.Flags().GetBool("watch")

		ctx, stop := signalContext()
		defer stop()
		return cli.Execute(ctx, opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addChainFlags(runCmd)
	runCmd.Flags().Bool("json", false, "Print the report as JSON")
	runCmd.Flags().Bool("trace", false, "Include the Mermaid execution trace")
	runCmd.Flags().BoolP("watch", "w", false, "Run again whenever the --chain definition changes")
}
