package core

import (
	"github.com/top3pick/phonerec/pkg/conv"
	"github.com/top3pick/phonerec/pkg/utils"
)

// 请求参数 key，Pipeline 中的 Node 从 RecommendContext.Params 读取。
const (
	ParamQuery   = "query"
	ParamBudget  = "budget"
	ParamUseCase = "use_case"
	ParamExpr    = "expr"
	ParamTopK    = "top_k"
)

// RecommendContext 承载一次请求的参数，贯穿整个 Pipeline 透传。
// 请求之间不共享任何状态。
type RecommendContext struct {
	Scene string // "text" / "specs"

	// Labels 是请求级标签，用于 explain / 观测
	Labels map[string]utils.Label

	// Params 请求级参数：query, budget, use_case, expr, top_k
	Params map[string]any
}

// NewRecommendContext 创建带空参数表的上下文。
func NewRecommendContext(scene string) *RecommendContext {
	return &RecommendContext{
		Scene:  scene,
		Labels: make(map[string]utils.Label),
		Params: make(map[string]any),
	}
}

// SetParam 写入请求参数；value 为 nil 时删除该参数。
func (rctx *RecommendContext) SetParam(key string, value any) {
	if rctx.Params == nil {
		rctx.Params = make(map[string]any)
	}
	if value == nil {
		delete(rctx.Params, key)
		return
	}
	rctx.Params[key] = value
}

// ParamString 读取字符串参数，不存在或类型不符时返回 ("", false)。
func (rctx *RecommendContext) ParamString(key string) (string, bool) {
	if rctx == nil || rctx.Params == nil {
		return "", false
	}
	return conv.ToString(rctx.Params[key])
}

// ParamInt 读取整数参数，兼容 YAML/JSON 解析出的 float64。
func (rctx *RecommendContext) ParamInt(key string) (int, bool) {
	if rctx == nil || rctx.Params == nil {
		return 0, false
	}
	return conv.ToInt(rctx.Params[key])
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
