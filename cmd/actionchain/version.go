package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aretw0/actionchain"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the actionchain build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "actionchain %s (%s %s/%s)\n",
			strings.TrimSpace(actionchain.Version), runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
