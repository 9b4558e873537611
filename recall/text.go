package recall

import (
	"context"
	"strconv"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/pipeline"
	"github.com/top3pick/phonerec/pkg/utils"
)

// TextRecall 是基于 TF-IDF 的文本召回源。
// 从 rctx.Params["query"] 读取查询文本，从 rctx.Params["top_k"] 读取条数；
// 同时实现 Source 与 pipeline.Node，可以直接放进 Pipeline。
type TextRecall struct {
	Index  *TFIDF
	Phones []core.Phone

	// TopK 在请求未指定 top_k 时使用
	TopK int
}

func (r *TextRecall) Name() string        { return "recall.text" }
func (r *TextRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *TextRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *TextRecall) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil {
		return nil, core.ErrNotReady
	}
	query, _ := rctx.ParamString(core.ParamQuery)

	topK := r.TopK
	if n, ok := rctx.ParamInt(core.ParamTopK); ok && n > 0 {
		topK = n
	}

	matches, err := r.Index.Query(query, topK)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(matches))
	for _, m := range matches {
		if m.Index < 0 || m.Index >= len(r.Phones) {
			continue
		}
		it := core.NewPhoneItem(m.Index, &r.Phones[m.Index])
		it.Score = m.Score
		it.PutLabel("recall_source", utils.Label{Value: "text", Source: "recall"})
		it.PutLabel("recall_metric", utils.Label{Value: "tfidf_cosine", Source: "recall"})
		it.PutLabel("recall_vocabulary", utils.Label{Value: strconv.Itoa(len(r.Index.Vocabulary)), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
