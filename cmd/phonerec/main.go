// Package main 是 phonerec 命令行入口。
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/top3pick/phonerec/config"
	"github.com/top3pick/phonerec/logging"
)

// Version 构建时通过 ldflags 注入。
var Version = "dev"

var (
	configPath  string
	humanOutput bool

	// cfg 在 PersistentPreRunE 中加载
	cfg *config.App
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "phonerec",
	Short: "Phone recommendation engine",
	Long: `phonerec recommends phones from a local catalog.

Free-text queries are matched with TF-IDF cosine similarity; budget and
use-case queries are filtered and ranked by rating. A trained engine is
persisted as a single snapshot and reused across restarts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		logging.Init(logging.Config{
			Level:     c.Log.Level,
			Format:    c.Log.Format,
			Caller:    c.Log.Caller,
			Timestamp: true,
			Output:    os.Stderr,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $CONFIG_PATH or phonerec.yaml)")
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
