package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/config"
	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/engine"
	"github.com/top3pick/phonerec/feature"
	"github.com/top3pick/phonerec/logging"
	"github.com/top3pick/phonerec/pipeline"
	"github.com/top3pick/phonerec/store"
)

func storeOptions(c *config.App) store.Options {
	return store.Options{
		Backend:       c.Snapshot.Backend,
		Dir:           c.Snapshot.Path,
		RedisAddr:     c.Snapshot.Redis.Addr,
		RedisPassword: c.Snapshot.Redis.Password,
		RedisDB:       c.Snapshot.Redis.DB,
	}
}

// engineOptions 把 engine 配置段转换为 engine.Option。
func engineOptions(c *config.App) ([]engine.Option, error) {
	opts := []engine.Option{
		engine.WithLogger(logging.Component("engine")),
		engine.WithDegenerate(feature.DegeneratePolicy(c.Engine.Degenerate)),
		engine.WithMaxFeatures(c.Engine.MaxFeatures),
		engine.WithTopK(c.Engine.TopK),
	}
	if c.Engine.PipelineFile != "" {
		pc, err := pipeline.LoadFile(c.Engine.PipelineFile)
		if err != nil {
			return nil, fmt.Errorf("load pipeline file: %w", err)
		}
		opts = append(opts, engine.WithSpecPipeline(pc))
	}
	return opts, nil
}

func brandLoader(c *config.App) *catalog.BrandLoader {
	return &catalog.BrandLoader{
		Dir:           c.Data.BrandDir,
		Brands:        c.Data.Brands,
		MaxConcurrent: c.Data.MaxConcurrent,
		Logger:        logging.Component("catalog"),
	}
}

// csvPath 返回目录文件路径，相对路径以品牌目录为基准。
func csvPath(c *config.App) string {
	if filepath.IsAbs(c.Data.CSVPath) {
		return c.Data.CSVPath
	}
	return filepath.Join(c.Data.BrandDir, c.Data.CSVPath)
}

// newBootstrap 打开快照存储并组装 Bootstrap，调用方负责关闭返回的 store。
func newBootstrap(ctx context.Context, c *config.App) (*engine.Bootstrap, core.Store, error) {
	opts, err := engineOptions(c)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(ctx, storeOptions(c))
	if err != nil {
		return nil, nil, err
	}
	return &engine.Bootstrap{
		Store:       s,
		Key:         c.Snapshot.Key,
		TTL:         c.Snapshot.TTL,
		CatalogPath: csvPath(c),
		Prepare:     brandLoader(c),
		Options:     opts,
		Logger:      logging.Component("bootstrap"),
	}, s, nil
}

// loadEngine 读取快照，没有快照时训练。
func loadEngine(ctx context.Context, c *config.App) (*engine.Engine, error) {
	b, s, err := newBootstrap(ctx, c)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return b.LoadOrTrain(ctx)
}
