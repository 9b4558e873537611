package feature

// Normalizer 是特征归一化接口
type Normalizer interface {
	// Normalize 归一化特征
	Normalize(features map[string]float64) map[string]float64
	// NormalizeValueWithKey 归一化单个值（指定特征名）
	NormalizeValueWithKey(key string, value float64) float64
}

// DegeneratePolicy 决定常量特征（max == min）如何归一化。
type DegeneratePolicy string

const (
	// DegeneratePassthrough 保留原始值（默认，与历史模型一致）
	DegeneratePassthrough DegeneratePolicy = "passthrough"
	// DegenerateNeutral 映射为固定中性值 0.5
	DegenerateNeutral DegeneratePolicy = "neutral"
)

// NeutralValue 是 DegenerateNeutral 下常量特征的取值。
const NeutralValue = 0.5

// MinMaxNormalizer Min-Max 归一化
// 公式: x' = (x - min) / (max - min)
// 特点: 将值缩放到 [0, 1] 区间；max == min 时按 Degenerate 处理
type MinMaxNormalizer struct {
	Min        map[string]float64 `json:"min"` // 特征最小值
	Max        map[string]float64 `json:"max"` // 特征最大值
	Degenerate DegeneratePolicy   `json:"degenerate"`
}

// NewMinMaxNormalizer 创建 Min-Max 归一化器
func NewMinMaxNormalizer(min, max map[string]float64) *MinMaxNormalizer {
	return &MinMaxNormalizer{
		Min:        min,
		Max:        max,
		Degenerate: DegeneratePassthrough,
	}
}

// FitMinMax 在整列数据上计算每个特征的 min/max。
// rows 中缺失的特征不参与统计。
func FitMinMax(rows []map[string]float64, policy DegeneratePolicy) *MinMaxNormalizer {
	n := NewMinMaxNormalizer(make(map[string]float64), make(map[string]float64))
	if policy != "" {
		n.Degenerate = policy
	}
	for _, row := range rows {
		for k, v := range row {
			if lo, ok := n.Min[k]; !ok || v < lo {
				n.Min[k] = v
			}
			if hi, ok := n.Max[k]; !ok || v > hi {
				n.Max[k] = v
			}
		}
	}
	return n
}

// Normalize 归一化特征
func (n *MinMaxNormalizer) Normalize(features map[string]float64) map[string]float64 {
	normalized := make(map[string]float64, len(features))
	for k, v := range features {
		normalized[k] = n.NormalizeValueWithKey(k, v)
	}
	return normalized
}

// NormalizeValueWithKey 归一化单个值（指定特征名）
func (n *MinMaxNormalizer) NormalizeValueWithKey(key string, value float64) float64 {
	min := n.Min[key]
	max := n.Max[key]
	rangeVal := max - min
	if rangeVal > 0 {
		return (value - min) / rangeVal
	}
	if n.Degenerate == DegenerateNeutral {
		return NeutralValue
	}
	return value
}

// IsDegenerate 返回该特征在拟合数据上是否为常量。
func (n *MinMaxNormalizer) IsDegenerate(key string) bool {
	return !(n.Max[key]-n.Min[key] > 0)
}
