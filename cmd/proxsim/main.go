package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "proxsim",
	Short: "Track the object nearest to a moving observer",
	Long: `proxsim runs a world of items and bots around a moving observer and keeps
the nearest object highlighted, streaming changes to websocket clients.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newRunCmd(), newBenchCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
