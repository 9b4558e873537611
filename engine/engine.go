// Package engine 是推荐引擎门面：持有目录、特征与文本索引，提供文本推荐、规格推荐、统计与快照。
//
// Engine 构建完成后不可变，可以被任意多个请求并发读取；
// 目录变化时构建新的 Engine，再通过 Handle 原子替换。
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/config"
	_ "github.com/top3pick/phonerec/config/builders"
	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/feature"
	"github.com/top3pick/phonerec/metrics"
	"github.com/top3pick/phonerec/pipeline"
	"github.com/top3pick/phonerec/pkg/utils"
	"github.com/top3pick/phonerec/recall"
)

// 推荐模式，用于 RecommendContext.Scene 与指标。
const (
	ModeText  = "text"
	ModeSpecs = "specs"
)

// TextMatch 是文本推荐的一条结果。
type TextMatch struct {
	Model           string  `json:"model"`
	Brand           string  `json:"brand"`
	Price           int     `json:"price"`
	Rating          float64 `json:"rating"`
	Processor       string  `json:"processor"`
	BestFor         string  `json:"best_for"`
	SimilarityScore float64 `json:"similarity_score"`
}

// SpecMatch 是规格推荐的一条结果。
type SpecMatch struct {
	Model     string  `json:"model"`
	Brand     string  `json:"brand"`
	Price     int     `json:"price"`
	Rating    float64 `json:"rating"`
	Processor string  `json:"processor"`
	BestFor   string  `json:"best_for"`
	Reason    string  `json:"reason"`
}

// SpecQuery 是规格推荐的条件，零值表示不过滤。
type SpecQuery struct {
	Budget  *int   // nil 表示不限预算；0 是有效预算
	UseCase string // "" 或 "overall" 表示不限用途
	Expr    string // 可选 CEL 表达式，见 pkg/dsl
}

// Engine 是一次训练的完整产物。
type Engine struct {
	id        string
	createdAt time.Time

	catalog  *catalog.Catalog
	features *feature.Set
	index    *recall.TFIDF
	stats    catalog.Stats

	text  *pipeline.Pipeline
	specs *pipeline.Pipeline

	opts options
}

type options struct {
	log         zerolog.Logger
	degenerate  feature.DegeneratePolicy
	maxFeatures int
	topK        int
	specConfig  *pipeline.Config
	observer    pipeline.Observer
}

// Option 配置 Engine。
type Option func(*options)

// WithLogger 设置日志。
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithDegenerate 设置常量数值特征的归一化策略。
func WithDegenerate(p feature.DegeneratePolicy) Option {
	return func(o *options) { o.degenerate = p }
}

// WithMaxFeatures 设置 TF-IDF 词表上限。
func WithMaxFeatures(n int) Option {
	return func(o *options) { o.maxFeatures = n }
}

// WithTopK 设置未指定 top_k 时的返回条数。
func WithTopK(n int) Option {
	return func(o *options) { o.topK = n }
}

// WithSpecPipeline 替换规格推荐的 Pipeline 配置（召回节点固定为全量目录）。
func WithSpecPipeline(cfg *pipeline.Config) Option {
	return func(o *options) { o.specConfig = cfg }
}

// WithObserver 替换 Pipeline 的打点回调，默认写 Prometheus 指标。
func WithObserver(obs pipeline.Observer) Option {
	return func(o *options) { o.observer = obs }
}

func newOptions(opts []Option) options {
	o := options{
		log:         zerolog.Nop(),
		degenerate:  feature.DegeneratePassthrough,
		maxFeatures: core.Defaults.MaxVocabulary(),
		topK:        core.Defaults.DefaultTopK(),
		observer:    metrics.ObserveNode,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxFeatures <= 0 {
		o.maxFeatures = core.Defaults.MaxVocabulary()
	}
	if o.topK <= 0 {
		o.topK = core.Defaults.DefaultTopK()
	}
	if o.specConfig == nil {
		o.specConfig = pipeline.DefaultSpecConfig()
	}
	return o
}

// New 在目录上构建特征与文本索引。目录为空时返回错误。
// 没有任何可索引词项时文本查询恒为空，规格查询不受影响。
func New(c *catalog.Catalog, opts ...Option) (*Engine, error) {
	if c.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: empty catalog")
	}
	o := newOptions(opts)
	start := time.Now()

	features := feature.Build(c.Phones, feature.WithDegenerate(o.degenerate))
	index, err := recall.FitTFIDF(features.TextBlobs, o.maxFeatures)
	if err != nil {
		return nil, fmt.Errorf("engine: fit text index: %w", err)
	}

	e := &Engine{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		catalog:   c,
		features:  features,
		index:     index,
		opts:      o,
	}
	if err := e.wire(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordEngineBuild(elapsed, c.Len(), len(index.Vocabulary), c.Report.Count())
	o.log.Info().
		Str("engine_id", e.id).
		Int("phones", c.Len()).
		Int("vocabulary", len(index.Vocabulary)).
		Int("defaulted_fields", c.Report.Count()).
		Int("defaulted_records", c.Report.Records()).
		Dur("elapsed", elapsed).
		Msg("engine built")
	return e, nil
}

// wire 构建只读的派生状态：统计与两条 Pipeline。
func (e *Engine) wire() error {
	e.stats = e.catalog.Stats()

	e.text = &pipeline.Pipeline{
		Nodes:    []pipeline.Node{&recall.TextRecall{Index: e.index, Phones: e.catalog.Phones, TopK: e.opts.topK}},
		Observer: e.opts.observer,
	}

	if err := config.ValidatePipelineConfig(e.opts.specConfig); err != nil {
		return fmt.Errorf("engine: spec pipeline: %w", err)
	}
	specs, err := e.opts.specConfig.BuildPipeline(config.DefaultFactory(), &recall.Catalog{Phones: e.catalog.Phones})
	if err != nil {
		return fmt.Errorf("engine: spec pipeline: %w", err)
	}
	specs.Observer = e.opts.observer
	e.specs = specs
	return nil
}

func (e *Engine) ready() error {
	if e == nil || e.index == nil || e.catalog == nil || e.text == nil || e.specs == nil {
		return core.ErrNotReady
	}
	return nil
}

// RecommendByText 返回与查询文本最相似的手机，按相似度降序，只包含相似度 > 0 的结果。
// topK <= 0 时使用默认条数。
func (e *Engine) RecommendByText(ctx context.Context, query string, topK int) ([]TextMatch, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	rctx := core.NewRecommendContext(ModeText)
	rctx.SetParam(core.ParamQuery, query)
	if topK > 0 {
		rctx.SetParam(core.ParamTopK, topK)
	}

	items, err := e.text.Run(ctx, rctx, nil)
	metrics.RecordRecommendation(ModeText, len(items), err)
	if err != nil {
		return nil, err
	}

	out := make([]TextMatch, 0, len(items))
	for _, it := range items {
		p := it.Phone
		out = append(out, TextMatch{
			Model:           p.Model,
			Brand:           p.Brand,
			Price:           p.Price,
			Rating:          p.Rating,
			Processor:       p.Processor,
			BestFor:         p.BestFor,
			SimilarityScore: it.Score,
		})
	}
	e.trace(rctx, items)
	return out, nil
}

// RecommendBySpecs 按预算与用途过滤后按评分降序返回，同分保持目录顺序。
// 没有任何条件时返回评分最高的 topK 条。表达式无法编译时返回 INVALID_INPUT。
func (e *Engine) RecommendBySpecs(ctx context.Context, q SpecQuery, topK int) ([]SpecMatch, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	rctx := core.NewRecommendContext(ModeSpecs)
	if q.Budget != nil {
		rctx.SetParam(core.ParamBudget, *q.Budget)
	}
	if q.UseCase != "" {
		rctx.SetParam(core.ParamUseCase, q.UseCase)
	}
	if q.Expr != "" {
		rctx.SetParam(core.ParamExpr, q.Expr)
	}
	if topK <= 0 {
		topK = e.opts.topK
	}
	rctx.SetParam(core.ParamTopK, topK)

	items, err := e.specs.Run(ctx, rctx, nil)
	metrics.RecordRecommendation(ModeSpecs, len(items), err)
	if err != nil {
		return nil, err
	}

	out := make([]SpecMatch, 0, len(items))
	for _, it := range items {
		p := it.Phone
		out = append(out, SpecMatch{
			Model:     p.Model,
			Brand:     p.Brand,
			Price:     p.Price,
			Rating:    p.Rating,
			Processor: p.Processor,
			BestFor:   p.BestFor,
			Reason:    p.Reason,
		})
	}
	e.trace(rctx, items)
	return out, nil
}

func (e *Engine) trace(rctx *core.RecommendContext, items []*core.Item) {
	log := e.opts.log
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, it := range items {
		log.Debug().
			Str("mode", rctx.Scene).
			Str("id", it.ID).
			Float64("score", it.Score).
			Strs("labels", utils.FlattenLabels(it.Labels)).
			Msg("recommended")
	}
}

// Stats 返回目录统计。
func (e *Engine) Stats() (catalog.Stats, error) {
	if err := e.ready(); err != nil {
		return catalog.Stats{}, err
	}
	return e.stats, nil
}

// Catalog 返回目录，调用方不得修改。
func (e *Engine) Catalog() *catalog.Catalog {
	if e == nil {
		return nil
	}
	return e.catalog
}

// Features 返回派生特征，调用方不得修改。
func (e *Engine) Features() *feature.Set {
	if e == nil {
		return nil
	}
	return e.features
}

// Index 返回文本索引。
func (e *Engine) Index() *recall.TFIDF {
	if e == nil {
		return nil
	}
	return e.index
}

// Report 返回入库时被默认填充的字段。
func (e *Engine) Report() catalog.DefaultReport {
	if e == nil || e.catalog == nil {
		return catalog.DefaultReport{}
	}
	return e.catalog.Report
}

// ID 是本次训练的唯一标识，随快照持久化。
func (e *Engine) ID() string {
	if e == nil {
		return ""
	}
	return e.id
}

// CreatedAt 是训练时间（UTC）。
func (e *Engine) CreatedAt() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.createdAt
}
