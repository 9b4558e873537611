// Package store 提供 core.Store 的实现，用于持久化引擎快照。
//
//	var s core.Store = store.NewMemoryStore()
//	s, err := store.Open(ctx, store.Options{Backend: store.BackendFile, Dir: "."})
package store

import (
	"context"
	"fmt"

	"github.com/top3pick/phonerec/core"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options 描述要打开的存储后端。
type Options struct {
	Backend string

	// file
	Dir string

	// redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open 根据 Backend 创建对应的 core.Store。
func Open(ctx context.Context, opts Options) (core.Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q: %w", opts.Backend, core.ErrStoreNotSupported)
	}
}
