package main

import (
	"github.com/aretw0/flowpaths/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [workflow]",
	Short: "Export the workflow graph visualization",
	Long:  `Outputs a Mermaid diagram (flowchart TD) of the workflow states. --target highlights the route to one state.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}
		defer rt.Close()

		target, _ := cmd.Flags().GetString("target")
		return cli.RunGraph(rt, target, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("target", "", "State or action to highlight")
}
