package recall

import (
	"context"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/pipeline"
	"github.com/top3pick/phonerec/pkg/utils"
)

// Catalog 是全量召回源：按目录顺序返回所有手机，供后续 Filter/Rank 处理。
// 目录规模很小，不做分页。
type Catalog struct {
	Phones []core.Phone
}

func (r *Catalog) Name() string        { return "recall.catalog" }
func (r *Catalog) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Catalog) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Catalog) Recall(
	_ context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(r.Phones))
	for i := range r.Phones {
		it := core.NewPhoneItem(i, &r.Phones[i])
		it.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
