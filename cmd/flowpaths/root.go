package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/flowpaths/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowpaths",
	Short: "flowpaths extracts the execution paths of serverless workflows",
	Long: `flowpaths reads a workflow (YAML/JSON document, HCL file, diagram text or a
directory with one document per state) and computes, for every action, the
paths that lead to it and the paths that follow it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	cli.BindFlags(rootCmd.PersistentFlags())
}

// loadConfig merges the config file with the flags set on cmd.
// A positional argument stands for --dir when the flag is not set.
func loadConfig(cmd *cobra.Command, args []string) (cli.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cli.LoadConfig(path, cmd.Flags().Changed("config"))
	if err != nil {
		return cfg, err
	}
	if err := cfg.Override(cmd.Flags()); err != nil {
		return cfg, err
	}
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		cfg.Dir = args[0]
	}
	return cfg, nil
}

// buildRuntime loads the config and wires the extractor.
func buildRuntime(ctx context.Context, cmd *cobra.Command, args []string) (*cli.Runtime, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	return cli.Build(ctx, cfg, cli.NewLogger(cfg))
}
