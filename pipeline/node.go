package pipeline

import (
	"context"

	"github.com/top3pick/phonerec/core"
)

// Kind 标记 Node 所处阶段，指标按它分组。
type Kind string

const (
	KindRecall      Kind = "recall"      // 从目录或文本索引取候选
	KindFilter      Kind = "filter"      // 预算、用途、表达式
	KindRank        Kind = "rank"        // 按评分排序
	KindReRank      Kind = "rerank"      // 截断、品牌打散
	KindPostProcess Kind = "postprocess"
)

// Node 是 Pipeline 的一个环节：读入候选，返回新的候选列表。
// 召回节点忽略输入 items。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
