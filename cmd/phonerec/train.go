package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the engine from the catalog and save a snapshot",
	Long: `Train builds features and the TF-IDF index from the catalog CSV and
saves the snapshot to the configured store, replacing any previous one.
When the CSV is missing it is first prepared from the brand JSON files.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func runTrain(cmd *cobra.Command, _ []string) error {
	b, s, err := newBootstrap(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := b.Train(cmd.Context())
	if err != nil {
		return err
	}
	if humanOutput {
		fmt.Printf("Trained engine %s on %d phones (%d terms), saved as %q\n",
			e.ID(), e.Catalog().Len(), len(e.Index().Vocabulary), cfg.Snapshot.Key)
		return nil
	}
	return outputJSON(map[string]any{
		"id":         e.ID(),
		"phones":     e.Catalog().Len(),
		"vocabulary": len(e.Index().Vocabulary),
		"key":        cfg.Snapshot.Key,
		"defaulted":  e.Report().Fields(),
	})
}
