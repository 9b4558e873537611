package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/metrics"
)

// Loader 产出一个可用的 Engine（读取快照或重新训练）。
type Loader func(ctx context.Context) (*Engine, error)

// Handle 持有当前生效的 Engine。
//
//   - Current 无锁读取，初始化成功前返回 core.ErrNotReady
//   - Init 只在尚未就绪时加载，并发调用合并为一次
//   - Reload 显式重建并原子替换，失败时保留旧 Engine
//
// 所有加载串行执行：同一时刻最多一个 Loader 在运行，后开始的写入者后生效。
type Handle struct {
	cur    atomic.Pointer[Engine]
	group  singleflight.Group
	mu     sync.Mutex // 串行化 Init 与 Reload 的加载和安装
	init   Loader
	reload Loader
	log    zerolog.Logger
}

// NewHandle 创建 Handle。reload 为 nil 时 Reload 复用 init。
func NewHandle(init, reload Loader, log zerolog.Logger) *Handle {
	if reload == nil {
		reload = init
	}
	return &Handle{init: init, reload: reload, log: log}
}

// Current 返回当前 Engine。
func (h *Handle) Current() (*Engine, error) {
	if e := h.cur.Load(); e != nil {
		return e, nil
	}
	return nil, core.ErrNotReady
}

// Ready 返回是否已有可用 Engine。
func (h *Handle) Ready() bool {
	return h.cur.Load() != nil
}

// Init 在尚未就绪时执行一次加载；已就绪则直接返回当前 Engine。
func (h *Handle) Init(ctx context.Context) (*Engine, error) {
	if e := h.cur.Load(); e != nil {
		return e, nil
	}
	return h.do(ctx, "init", h.init, true)
}

// Reload 无条件重建并替换当前 Engine。
func (h *Handle) Reload(ctx context.Context) (*Engine, error) {
	return h.do(ctx, "reload", h.reload, false)
}

// Replace 直接替换当前 Engine，nil 会被忽略。
func (h *Handle) Replace(e *Engine) {
	if e == nil {
		return
	}
	old := h.cur.Swap(e)
	h.log.Info().Str("engine_id", e.ID()).Str("previous_id", old.ID()).Msg("engine replaced")
}

func (h *Handle) do(ctx context.Context, key string, load Loader, onlyIfEmpty bool) (*Engine, error) {
	if load == nil {
		return nil, core.ErrNotReady
	}
	v, err, _ := h.group.Do(key, func() (any, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if onlyIfEmpty {
			if e := h.cur.Load(); e != nil {
				return e, nil
			}
		}
		e, err := load(ctx)
		metrics.RecordReload(key, err)
		if err != nil {
			h.log.Error().Err(err).Str("op", key).Msg("engine load failed")
			return nil, err
		}
		if !onlyIfEmpty {
			h.Replace(e)
			return e, nil
		}
		// Replace 不经过 mu，Init 只在仍为空时安装
		if !h.cur.CompareAndSwap(nil, e) {
			cur := h.cur.Load()
			h.log.Info().Str("engine_id", cur.ID()).Str("discarded_id", e.ID()).Msg("engine already installed")
			return cur, nil
		}
		h.log.Info().Str("engine_id", e.ID()).Msg("engine installed")
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Engine), nil
}
