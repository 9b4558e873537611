package filter

import (
	"context"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/pipeline"
	"github.com/top3pick/phonerec/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉。
//
// 过滤器返回 INVALID_INPUT 错误（例如表达式无法编译）时中断整个请求；
// 其他错误只记录在 Item 的 filter_error 标签上，该物品保留。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		drop := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				if core.IsInvalidInput(err) {
					return nil, err
				}
				item.PutLabel("filter_error", utils.Label{Value: err.Error(), Source: f.Name()})
				continue
			}
			if ok {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, item)
		}
	}

	return out, nil
}
