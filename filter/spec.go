package filter

import (
	"context"
	"strings"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/pkg/conv"
	"github.com/top3pick/phonerec/pkg/dsl"
	"github.com/top3pick/phonerec/pipeline"
)

// BudgetFilter 过滤价格高于预算的手机。
// Budget 为 nil 时读取请求参数 budget；两者都没有则不过滤。0 也是有效预算。
type BudgetFilter struct {
	Budget *int
}

func (f *BudgetFilter) Name() string { return "filter.budget" }

func (f *BudgetFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	budget, ok := f.budget(rctx)
	if !ok {
		return false, nil
	}
	if item.Phone == nil {
		return true, nil
	}
	return item.Phone.Price > budget, nil
}

func (f *BudgetFilter) budget(rctx *core.RecommendContext) (int, bool) {
	if f.Budget != nil {
		return *f.Budget, true
	}
	if rctx == nil {
		return 0, false
	}
	return conv.ToBudget(rctx.Params[core.ParamBudget])
}

// UseCaseFilter 按用途过滤：best_for 不区分大小写地包含 use_case 才保留。
// use_case 为空或为 "overall" 时不过滤。
type UseCaseFilter struct {
	UseCase string
}

func (f *UseCaseFilter) Name() string { return "filter.use_case" }

func (f *UseCaseFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	useCase := f.UseCase
	if useCase == "" {
		useCase, _ = rctx.ParamString(core.ParamUseCase)
	}
	if !ActiveUseCase(useCase) {
		return false, nil
	}
	if item.Phone == nil || item.Phone.BestFor == "" {
		return true, nil
	}
	return !strings.Contains(strings.ToLower(item.Phone.BestFor), strings.ToLower(useCase)), nil
}

// ActiveUseCase 判断用途是否会触发过滤。
func ActiveUseCase(useCase string) bool {
	return useCase != "" && !strings.EqualFold(useCase, core.Defaults.NeutralUseCase())
}

// ExprFilter 使用 CEL 表达式过滤：表达式为 false 的物品被过滤。
// Expr 为空时读取请求参数 expr；都为空则不过滤。
type ExprFilter struct {
	Expr string
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	expr := f.Expr
	if expr == "" {
		expr, _ = rctx.ParamString(core.ParamExpr)
	}
	if expr == "" {
		return false, nil
	}
	p, err := dsl.Compile(expr)
	if err != nil {
		return false, err
	}
	keep, err := p.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

// NewNode 把单个过滤器包装成 Node，Name 沿用过滤器的名称。
func NewNode(f Filter) pipeline.Node {
	return &namedNode{FilterNode: FilterNode{Filters: []Filter{f}}, name: f.Name()}
}

type namedNode struct {
	FilterNode
	name string
}

func (n *namedNode) Name() string { return n.name }
