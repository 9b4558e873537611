package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEngine(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		st, err := e.Stats()
		if err != nil {
			return err
		}
		if humanOutput {
			printStats(st)
			return nil
		}
		return outputJSON(st)
	},
}
