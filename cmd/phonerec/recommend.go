package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/top3pick/phonerec/engine"
)

var (
	recQuery   string
	recBudget  int
	recUseCase string
	recExpr    string
	recTopK    int
)

func init() {
	f := recommendCmd.Flags()
	f.StringVarP(&recQuery, "query", "q", "", "Free-text query; takes precedence over spec filters")
	f.IntVar(&recBudget, "budget", 0, "Maximum price")
	f.StringVar(&recUseCase, "use-case", "", "Use case substring, e.g. gaming (\"overall\" disables the filter)")
	f.StringVar(&recExpr, "expr", "", "Extra CEL predicate over item fields, e.g. 'item.ram == \"8GB\"'")
	f.IntVarP(&recTopK, "top-k", "k", 0, "Number of results (default: engine.top_k)")
	rootCmd.AddCommand(recommendCmd)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend phones by text query or by budget and use case",
	Example: `  phonerec recommend --query "gaming phone with good battery"
  phonerec recommend --budget 25000 --use-case camera -k 3`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	budgetSet := cmd.Flags().Changed("budget")
	if recQuery == "" && recUseCase == "" && !budgetSet && recExpr == "" {
		return errors.New("provide --query, or at least one of --budget, --use-case, --expr")
	}
	if budgetSet && recBudget < 0 {
		return errors.New("--budget must be non-negative")
	}

	e, err := loadEngine(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if recQuery != "" {
		res, err := e.RecommendByText(cmd.Context(), recQuery, recTopK)
		if err != nil {
			return err
		}
		if humanOutput {
			printTextMatches(res)
			return nil
		}
		return outputJSON(res)
	}

	q := engine.SpecQuery{UseCase: recUseCase, Expr: recExpr}
	if budgetSet {
		q.Budget = &recBudget
	}
	res, err := e.RecommendBySpecs(cmd.Context(), q, recTopK)
	if err != nil {
		return err
	}
	if humanOutput {
		printSpecMatches(res)
		return nil
	}
	return outputJSON(res)
}
