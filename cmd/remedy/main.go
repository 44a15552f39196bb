package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"remedy/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "remedy",
	Short: "Type mismatch diagnosis and repair suggestions",
	Long:  `Remedy explains why two types fail to unify and suggests ranked conversions that would repair the mismatch`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cleanCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
