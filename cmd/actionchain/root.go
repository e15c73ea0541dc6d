package main

import (
	"fmt"
	"os"

	"github.com/aretw0/actionchain/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "actionchain",
	Short: "actionchain runs ordered chains of actions as one unit",
	Long: `actionchain executes chains of actions defined in YAML, JSON or Markdown
frontmatter, threading data from step to step inside a shared transaction.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().String("dir", ".", "Directory of the chain repository")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("commands", "", "Allow-list of external commands for exec actions (default <dir>/commands.yaml)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address; transactions use Redis instead of memory")
	rootCmd.PersistentFlags().String("redis-prefix", "", "Key prefix for the Redis transaction manager")
}

// runOptions collects the persistent flags and the chain argument.
func runOptions(cmd *cobra.Command, args []string) (cli.RunOptions, error) {
	flags := cmd.Flags()
	level, _ := flags.GetString("log-level")
	logger, err := cli.CreateLogger(level)
	if err != nil {
		return cli.RunOptions{}, err
	}

	opts := cli.RunOptions{Logger: logger, Debug: level == "debug"}
	opts.RepoPath, _ = flags.GetString("dir")
	opts.CommandsPath, _ = flags.GetString("commands")
	opts.RedisAddr, _ = flags.GetString("redis")
	opts.RedisPrefix, _ = flags.GetString("redis-prefix")
	if flags.Lookup("chain") != nil {
		opts.ChainID, _ = flags.GetString("chain")
	}
	if flags.Lookup("input") != nil {
		opts.InputPath, _ = flags.GetString("input")
	}
	if flags.Lookup("param") != nil {
		opts.Params, _ = flags.GetStringArray("param")
	}
	if len(args) > 0 {
		opts.ChainPath = args[0]
	}
	return opts, nil
}

// addChainFlags registers the flags shared by commands that load a chain.
func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("chain", "", "Chain id inside the --dir repository")
	cmd.Flags().StringP("input", "i", "", "Input dataset file (YAML or JSON)")
	cmd.Flags().StringArrayP("param", "p", nil, "Task parameter as key=value (repeatable)")
}
