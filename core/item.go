package core

import "github.com/top3pick/phonerec/pkg/utils"

// Item 是推荐链路中的统一承载结构：目录记录、分数、标签。
// Labels 用于解释与观测；Score 是当前阶段的排序依据（文本召回为相似度）。
type Item struct {
	ID    string
	Index int // 在目录中的原始位置，用于稳定排序
	Score float64
	Phone *Phone

	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// NewPhoneItem 由目录记录构造 Item。
func NewPhoneItem(index int, p *Phone) *Item {
	it := NewItem(p.ID)
	it.Index = index
	it.Phone = p
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
