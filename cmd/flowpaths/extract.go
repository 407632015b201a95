package main

import (
	"github.com/aretw0/flowpaths/internal/cli"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [workflow]",
	Short: "Extract the inbound and outbound paths of every action",
	Long: `Expands the workflow, extracts the paths before and after every action,
saves them in the configured store and prints them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		rt, err := buildRuntime(sigCtx, cmd, args)
		if err != nil {
			return err
		}
		defer rt.Close()

		format, _ := cmd.Flags().GetString("format")
		action, _ := cmd.Flags().GetString("action")
		opts := cli.ExtractOptions{Format: format, Action: action}

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return cli.RunWatch(sigCtx, rt, opts, cmd.OutOrStdout())
		}
		return cli.RunExtract(sigCtx, rt, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("format", "f", cli.FormatText, "Output format: text, json or yaml")
	extractCmd.Flags().String("action", "", "Only print this action")
	extractCmd.Flags().BoolP("watch", "w", false, "Extract again whenever the workflow changes")
}
