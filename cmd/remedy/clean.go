package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remedy/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove cached diagnosis results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenDiskCache("remedy")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		if err := cache.Clear(); err != nil {
			return fmt.Errorf("failed to clear disk cache: %w", err)
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "disk cache cleared")
		}
		return nil
	},
}
