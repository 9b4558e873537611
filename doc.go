// Package phonerec 是一个基于本地目录的手机推荐引擎。
//
// 设计要点：
// - 两种模式：自由文本走 TF-IDF 余弦召回；预算/用途走 过滤 → 按评分排序 → 截断
// - Pipeline-first: 两种模式都由 Node 串联，规格模式的 Pipeline 可用 YAML 配置
// - 一次训练，快照持久化：目录、特征、词表与文档向量一起保存，加载时不重新拟合
package phonerec

import (
	"github.com/top3pick/phonerec/engine"
	"github.com/top3pick/phonerec/pipeline"
)

// 轻量 facade：便于直接 import "phonerec" 使用核心抽象。
type (
	Engine    = engine.Engine
	SpecQuery = engine.SpecQuery
	TextMatch = engine.TextMatch
	SpecMatch = engine.SpecMatch
	Pipeline  = pipeline.Pipeline
	Node      = pipeline.Node
	Kind      = pipeline.Kind
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
