package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/pipeline"
	"github.com/top3pick/phonerec/pkg/utils"
)

// RatingNode 按整体评分排序。
// - 写入 labels：rank_model=rating
// - item.Score 更新为 rating，按分数降序稳定排序（同分保持目录顺序）
type RatingNode struct{}

func (n *RatingNode) Name() string        { return "rank.rating" }
func (n *RatingNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *RatingNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil || it.Phone == nil {
			continue
		}
		it.Score = it.Phone.Rating
		it.PutLabel("rank_model", utils.Label{Value: "rating", Source: "rank"})
	}

	sortByScore(items)
	for i, it := range items {
		if it != nil {
			it.PutLabel("rank_position", utils.Label{Value: strconv.Itoa(i + 1), Source: "rank"})
		}
	}
	return items, nil
}

// sortByScore 按 Score 降序稳定排序，nil 排在最后。
func sortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}
