package main

import (
	"github.com/aretw0/flowpaths/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [workflow]",
	Short: "Check the graph for consistency",
	Long:  `Reports dangling transitions and children, unknown kinds, malformed loops and unreachable states.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}
		defer rt.Close()

		format, _ := cmd.Flags().GetString("format")
		return cli.RunValidate(rt, format, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("format", "f", cli.FormatText, "Output format: text, json or yaml")
}
