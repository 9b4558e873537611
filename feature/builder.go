// Package feature 为目录构建两种特征表示：文本串（供 TF-IDF 索引）与归一化数值向量。
package feature

import (
	"strings"

	"github.com/top3pick/phonerec/core"
)

// NumericFields 是数值向量的字段顺序。
var NumericFields = []string{"price", "gaming", "camera", "battery_score", "performance", "rating"}

// Set 是整个目录的派生特征，与目录一一对应，目录变化时整体重建。
type Set struct {
	TextBlobs []string          `json:"text_blobs"`
	Vectors   [][]float64       `json:"vectors"`
	Bounds    *MinMaxNormalizer `json:"bounds"`
}

// BuildOption 配置 Build。
type BuildOption func(*buildOptions)

type buildOptions struct {
	degenerate DegeneratePolicy
}

// WithDegenerate 指定常量特征的处理方式，默认 DegeneratePassthrough。
func WithDegenerate(p DegeneratePolicy) BuildOption {
	return func(o *buildOptions) {
		if p != "" {
			o.degenerate = p
		}
	}
}

// Build 为目录构建特征。无副作用，每次全量计算。
func Build(phones []core.Phone, opts ...BuildOption) *Set {
	o := buildOptions{degenerate: DegeneratePassthrough}
	for _, opt := range opts {
		opt(&o)
	}

	raw := make([]map[string]float64, len(phones))
	set := &Set{
		TextBlobs: make([]string, len(phones)),
		Vectors:   make([][]float64, len(phones)),
	}
	for i := range phones {
		set.TextBlobs[i] = TextBlob(&phones[i])
		raw[i] = RawNumeric(&phones[i])
	}

	set.Bounds = FitMinMax(raw, o.degenerate)
	for i, row := range raw {
		set.Vectors[i] = set.Vector(row)
	}
	return set
}

// TextBlob 按固定顺序拼接 brand、best_for、processor、reason，单空格分隔。
func TextBlob(p *core.Phone) string {
	return strings.Join([]string{p.Brand, p.BestFor, p.Processor, p.Reason}, " ")
}

// RawNumeric 返回未归一化的数值特征。
func RawNumeric(p *core.Phone) map[string]float64 {
	return map[string]float64{
		"price":         float64(p.Price),
		"gaming":        p.Gaming,
		"camera":        p.Camera,
		"battery_score": p.BatteryScore,
		"performance":   p.Performance,
		"rating":        p.Rating,
	}
}

// Vector 用冻结的边界把原始特征投影为 NumericFields 顺序的向量。
func (s *Set) Vector(raw map[string]float64) []float64 {
	vec := make([]float64, len(NumericFields))
	for i, f := range NumericFields {
		vec[i] = s.Bounds.NormalizeValueWithKey(f, raw[f])
	}
	return vec
}

// Len 返回特征条数。
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.TextBlobs)
}
