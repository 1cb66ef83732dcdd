package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "proxyprint",
	Short: "Tool for compiling card manifests and printing proxy sheets",
	Long: `Proxyprint compiles card printing manifests from a card dataset plus manual
overrides, and lays the results out as print-ready PDF proxy sheets.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
