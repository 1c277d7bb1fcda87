// Package main provides the prinsights CLI and GitHub Action entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "prinsights",
		Short: "Size, category and risk labels for pull requests",
		Long: `prinsights analyzes a pull request's changed files and decides which
size, complexity, category, risk and violation labels it should carry.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDecideCmd(),
		newValidateCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
