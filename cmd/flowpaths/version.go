package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowpaths"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowpaths",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flowpaths version %s\n", strings.TrimSpace(flowpaths.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
