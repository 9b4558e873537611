package builders

import (
	"fmt"

	"github.com/top3pick/phonerec/config"
	"github.com/top3pick/phonerec/filter"
	"github.com/top3pick/phonerec/pipeline"
	"github.com/top3pick/phonerec/pkg/conv"
	"github.com/top3pick/phonerec/rank"
	"github.com/top3pick/phonerec/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("filter.budget", BuildBudgetNode)
	config.Register("filter.use_case", BuildUseCaseNode)
	config.Register("filter.expr", BuildExprNode)
	config.Register("filter.blacklist", BuildBlacklistNode)
	config.Register("rank.rating", BuildRatingNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.brand_diversity", BuildBrandDiversityNode)
}

// BuildFilterNode 组合多个过滤器：config.filters 为 [{type: budget, ...}, ...]。
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		f, err := buildFilter(conv.ConfigGet(filterMap, "type", ""), filterMap)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func buildFilter(filterType string, cfg map[string]any) (filter.Filter, error) {
	switch filterType {
	case "budget":
		f := &filter.BudgetFilter{}
		if v, ok := cfg["budget"]; ok {
			b, ok := conv.ToBudget(v)
			if !ok {
				return nil, fmt.Errorf("invalid budget: %v", v)
			}
			f.Budget = &b
		}
		return f, nil
	case "use_case":
		return &filter.UseCaseFilter{UseCase: conv.ConfigGet(cfg, "use_case", "")}, nil
	case "expr":
		return &filter.ExprFilter{Expr: conv.ConfigGet(cfg, "expr", "")}, nil
	case "blacklist":
		return filter.NewBlacklistFilter(conv.SliceAnyToString(cfg["ids"])), nil
	default:
		return nil, fmt.Errorf("unknown filter type: %s", filterType)
	}
}

func buildSingle(filterType string) config.NodeBuilder {
	return func(cfg map[string]any) (pipeline.Node, error) {
		f, err := buildFilter(filterType, cfg)
		if err != nil {
			return nil, err
		}
		return filter.NewNode(f), nil
	}
}

func BuildBudgetNode(cfg map[string]any) (pipeline.Node, error)    { return buildSingle("budget")(cfg) }
func BuildUseCaseNode(cfg map[string]any) (pipeline.Node, error)   { return buildSingle("use_case")(cfg) }
func BuildExprNode(cfg map[string]any) (pipeline.Node, error)      { return buildSingle("expr")(cfg) }
func BuildBlacklistNode(cfg map[string]any) (pipeline.Node, error) { return buildSingle("blacklist")(cfg) }

func BuildRatingNode(map[string]any) (pipeline.Node, error) {
	return &rank.RatingNode{}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := int(conv.ConfigGetInt64(cfg, "n", 0))
	if n < 0 {
		return nil, fmt.Errorf("rerank.topn: n must not be negative: %d", n)
	}
	return &rerank.TopNNode{N: n}, nil
}

func BuildBrandDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.BrandDiversity{MaxPerBrand: int(conv.ConfigGetInt64(cfg, "max_per_brand", 1))}, nil
}
