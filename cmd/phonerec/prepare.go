package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/logging"
)

var prepareOut string

func init() {
	prepareCmd.Flags().StringVar(&prepareOut, "out", "", "Output CSV path (default: data.csv_path)")
	rootCmd.AddCommand(prepareCmd)
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Flatten brand JSON files into the catalog CSV",
	Args:  cobra.NoArgs,
	RunE:  runPrepare,
}

func runPrepare(cmd *cobra.Command, _ []string) error {
	out := prepareOut
	if out == "" {
		out = csvPath(cfg)
	}

	recs, err := brandLoader(cfg).Load(cmd.Context())
	if err != nil {
		return err
	}
	c, err := catalog.Normalize(recs)
	if err != nil {
		return err
	}
	if err := catalog.SaveCSV(out, c); err != nil {
		return err
	}

	log := logging.Component("prepare")
	log.Info().
		Str("path", out).
		Int("phones", c.Len()).
		Int("defaulted", c.Report.Count()).
		Msg("catalog written")
	if humanOutput {
		fmt.Printf("Wrote %d phones to %s\n", c.Len(), out)
		return nil
	}
	return outputJSON(map[string]any{"path": out, "phones": c.Len(), "defaulted": c.Report.Fields()})
}
