package rerank

import (
	"context"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个物品。
//
// 条数优先取请求参数 top_k（正整数），其次取 N，
// 两者都没有时使用 core.Defaults.DefaultTopK()。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.limit(rctx)
	if len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}

func (n *TopNNode) limit(rctx *core.RecommendContext) int {
	if k, ok := rctx.ParamInt(core.ParamTopK); ok && k > 0 {
		return k
	}
	if n.N > 0 {
		return n.N
	}
	return core.Defaults.DefaultTopK()
}
