package rerank

import (
	"context"
	"strings"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/pipeline"
)

// BrandDiversity 限制同一品牌在结果中出现的次数，保持原有顺序。
// 品牌取 Phone.Brand（不区分大小写），没有 Phone 时取 label["brand"]。
type BrandDiversity struct {
	MaxPerBrand int // 默认 1
}

func (n *BrandDiversity) Name() string {
	return "rerank.brand_diversity"
}

func (n *BrandDiversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *BrandDiversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := n.MaxPerBrand
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		brand := ""
		if it.Phone != nil {
			brand = it.Phone.Brand
		} else if lbl, ok := it.Labels["brand"]; ok {
			brand = lbl.Value
		}
		brand = strings.ToLower(brand)
		if brand != "" && seen[brand] >= limit {
			continue
		}
		seen[brand]++
		out = append(out, it)
	}
	return out, nil
}
