package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/core"
)

// Bootstrap 实现“有快照就加载，没有就训练并保存”的启动流程。
type Bootstrap struct {
	Store core.Store
	Key   string
	TTL   int

	// CatalogPath 是训练用的目录文件（csv/yaml/json）
	CatalogPath string

	// Prepare 在目录文件不存在时用品牌 JSON 生成它，可为 nil
	Prepare *catalog.BrandLoader

	Options []Option
	Logger  zerolog.Logger
}

// LoadOrTrain 优先读取快照；快照不存在或已损坏时重新训练并保存。
func (b *Bootstrap) LoadOrTrain(ctx context.Context) (*Engine, error) {
	e, err := Load(ctx, b.Store, b.Key, b.options()...)
	switch {
	case err == nil:
		return e, nil
	case core.IsStoreNotFound(err):
		b.Logger.Info().Str("key", b.Key).Msg("no snapshot, training")
	case errors.Is(err, ErrSnapshotCorrupt):
		b.Logger.Warn().Err(err).Str("key", b.Key).Msg("snapshot unusable, retraining")
	default:
		return nil, err
	}
	return b.Train(ctx)
}

// Train 从目录文件训练并保存快照。目录文件缺失且配置了 Prepare 时先生成目录文件。
func (b *Bootstrap) Train(ctx context.Context) (*Engine, error) {
	c, err := b.catalog(ctx)
	if err != nil {
		return nil, err
	}
	if n := c.Report.Count(); n > 0 {
		b.Logger.Warn().
			Int("fields", n).
			Int("records", c.Report.Records()).
			Interface("by_field", c.Report.Fields()).
			Msg("catalog fields defaulted")
	}

	e, err := New(c, b.options()...)
	if err != nil {
		return nil, err
	}
	if b.Store != nil {
		if err := e.Save(ctx, b.Store, b.Key, b.TTL); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (b *Bootstrap) catalog(ctx context.Context) (*catalog.Catalog, error) {
	_, err := os.Stat(b.CatalogPath)
	if err == nil {
		return catalog.LoadFile(b.CatalogPath)
	}
	if !errors.Is(err, fs.ErrNotExist) || b.Prepare == nil {
		return nil, fmt.Errorf("engine: catalog %s: %w", b.CatalogPath, err)
	}

	b.Logger.Info().Str("dir", b.Prepare.Dir).Msg("catalog missing, preparing from brand files")
	recs, err := b.Prepare.Load(ctx)
	if err != nil {
		return nil, err
	}
	c, err := catalog.Normalize(recs)
	if err != nil {
		return nil, err
	}
	if err := catalog.SaveCSV(b.CatalogPath, c); err != nil {
		return nil, err
	}
	b.Logger.Info().Str("path", b.CatalogPath).Int("phones", c.Len()).Msg("catalog prepared")
	return c, nil
}

func (b *Bootstrap) options() []Option {
	return append([]Option{WithLogger(b.Logger)}, b.Options...)
}
