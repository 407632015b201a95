package main

import (
	"github.com/aretw0/flowpaths/internal/cli"
	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:   "paths [target...]",
	Short: "List the paths leading to states or actions",
	Long: `Prints every path from the workflow entries that ends at each target.
A target is a state ID, a state name or an action value. Without targets the
full paths of the workflow are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		rt, err := buildRuntime(sigCtx, cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		format, _ := cmd.Flags().GetString("format")
		return cli.RunPaths(sigCtx, rt, args, format, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
	pathsCmd.Flags().StringP("format", "f", cli.FormatText, "Output format: text, json or yaml")
}
