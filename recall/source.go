package recall

import (
	"context"

	"github.com/top3pick/phonerec/core"
)

// Source 表示一个召回源：根据请求上下文生成带分数的候选。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
