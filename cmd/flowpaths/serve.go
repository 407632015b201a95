package main

import (
	"github.com/aretw0/flowpaths"
	"github.com/aretw0/flowpaths/internal/cli"
	"github.com/aretw0/flowpaths/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [workflow]",
	Short: "Start the HTTP API",
	Long: `Serves the extractor over HTTP: /v1/graph, /v1/paths, /v1/extract,
/v1/extractions, /metrics and the /events stream of reloads and extractions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		rt, err := buildRuntime(sigCtx, cmd, args)
		if err != nil {
			return err
		}
		defer rt.Close()

		port, _ := cmd.Flags().GetString("port")
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.OutOrStdout(), flowpaths.Version)
		}
		return cli.RunServe(sigCtx, rt, cli.ServeOptions{Addr: ":" + port}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
