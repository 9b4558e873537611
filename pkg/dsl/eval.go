package dsl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/top3pick/phonerec/core"
)

const (
	// MaxExprLength 是表达式的最大字节数。
	MaxExprLength = 512
	// CacheSize 是编译结果缓存的条数上限，超出后淘汰最久未用的表达式。
	CacheSize = 256
	// CostLimit 是单次求值的运行期代价上限。
	CostLimit = 10000
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	// 编译结果按表达式缓存，表达式可能来自请求参数，所以有上限
	programs = mustCache(CacheSize)
)

func mustCache(size int) *lru.Cache[string, *Program] {
	c, err := lru.New[string, *Program](size)
	if err != nil {
		panic(err)
	}
	return c
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的表达式，可并发求值。
type Program struct {
	Expr string
	prg  cel.Program
}

// Compile 编译表达式并缓存。表达式语法错误返回 INVALID_INPUT 类型的 DomainError。
//
// 可用变量：
//   - item.id / item.model / item.brand / item.processor / item.best_for / item.reason
//   - item.price / item.launch_year（int）
//   - item.gaming / item.camera / item.battery_score / item.performance / item.display_score / item.rating / item.score（double）
//   - label.<key>：Label 的 Value；访问不存在的 key 会报错，先用 "key" in label 判断
//   - rctx.scene / rctx.params
//
// 示例：
//   - `item.brand == "Samsung" && item.rating >= 4.5`
//   - `item.best_for.contains("camera")`
//   - `item.price <= 30000 || item.launch_year >= 2024`
//
// 超过 MaxExprLength 的表达式直接拒绝；求值代价超过 CostLimit 时 Match 返回 INVALID_INPUT。
func Compile(expr string) (*Program, error) {
	if len(expr) > MaxExprLength {
		return nil, core.NewDomainError(core.ModuleFilter, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dsl: expression longer than %d bytes", MaxExprLength))
	}
	if p, ok := programs.Get(expr); ok {
		return p, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: init env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.NewDomainErrorWithCause(core.ModuleFilter, core.ErrorCodeInvalidInput,
			"dsl: compile "+expr, issues.Err())
	}
	prg, err := env.Program(ast, cel.CostLimit(CostLimit))
	if err != nil {
		return nil, core.NewDomainErrorWithCause(core.ModuleFilter, core.ErrorCodeInvalidInput,
			"dsl: program "+expr, err)
	}

	p := &Program{Expr: expr, prg: prg}
	if prev, ok, _ := programs.PeekOrAdd(expr, p); ok {
		return prev, nil
	}
	return p, nil
}

// Match 对单个 Item 求值，表达式必须返回 bool。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		if strings.Contains(err.Error(), "cost limit exceeded") {
			return false, core.NewDomainErrorWithCause(core.ModuleFilter, core.ErrorCodeInvalidInput,
				"dsl: expression too expensive", err)
		}
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Eval 是 Label DSL 解释器，绑定一个 Item 与请求上下文。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

// NewEval 创建一个新的 DSL 解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 解析并执行 DSL 表达式，空表达式恒为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(e.item, e.rctx)
}

func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = v.Value
	}

	item := map[string]any{
		"id":    it.ID,
		"score": it.Score,
	}
	if p := it.Phone; p != nil {
		item["model"] = p.Model
		item["brand"] = p.Brand
		item["price"] = int64(p.Price)
		item["launch_year"] = int64(p.LaunchYear)
		item["processor"] = p.Processor
		item["ram"] = p.RAM
		item["storage"] = p.Storage
		item["display"] = p.Display
		item["battery"] = p.Battery
		item["best_for"] = p.BestFor
		item["reason"] = p.Reason
		item["gaming"] = p.Gaming
		item["camera"] = p.Camera
		item["battery_score"] = p.BatteryScore
		item["performance"] = p.Performance
		item["display_score"] = p.DisplayScore
		item["rating"] = p.Rating
	}

	ctx := map[string]any{
		"scene":  "",
		"params": map[string]any{},
	}
	if rctx != nil {
		ctx["scene"] = rctx.Scene
		if rctx.Params != nil {
			ctx["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  item,
		"label": labels,
		"rctx":  ctx,
	}
}
