// Package cmd wires the command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "uras",
	Short: "Resource allocation and scheduling engine",
	Long: `uras schedules tasks on capacitated resources using dispatching
rules, constraint-based search or a genetic algorithm. Requests are
JSON documents read from a file or stdin; the resulting schedule and
its quality metrics are written to stdout.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
