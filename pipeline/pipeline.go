package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/top3pick/phonerec/core"
)

// Observer 在每个 Node 执行完毕后被调用，用于打点。
type Observer func(node Node, in, out int, elapsed time.Duration, err error)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，前一个 Node 的输出即下一个的输入。
type Pipeline struct {
	Nodes []Node

	// Observer 可选
	Observer Observer
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if p.Observer != nil {
			p.Observer(node, len(cur), len(next), time.Since(start), err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
