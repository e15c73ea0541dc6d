package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/actionchain/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [chain.yaml]",
	Short: "Check a chain definition for consistency",
	Long:  `Reports structural problems and unknown action types without running anything.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd, args)
		if err != nil {
			return err
		}
		if err := cli.Validate(context.Background(), opts, os.Stdout); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("Chain is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("chain", "", "Chain id inside the --dir repository")
}
