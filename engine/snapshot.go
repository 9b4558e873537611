package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/feature"
	"github.com/top3pick/phonerec/metrics"
	"github.com/top3pick/phonerec/recall"
)

// SnapshotVersion 是快照格式版本，格式不兼容时递增。
const SnapshotVersion = 1

// ErrSnapshotCorrupt 表示快照无法解析或内部不一致。
var ErrSnapshotCorrupt = core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: corrupt snapshot")

// snapshot 是持久化格式：目录、特征（含归一化边界）与冻结的文本索引。
// 恢复时不重新拟合，查询结果与保存前一致。
type snapshot struct {
	Version   int                   `json:"version"`
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Phones    []core.Phone          `json:"phones"`
	Report    catalog.DefaultReport `json:"report"`
	Features  *feature.Set          `json:"features"`
	Index     *recall.TFIDF         `json:"index"`
}

// MarshalBinary 把引擎编码为单个不透明的快照。
func (e *Engine) MarshalBinary() ([]byte, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return json.Marshal(snapshot{
		Version:   SnapshotVersion,
		ID:        e.id,
		CreatedAt: e.createdAt,
		Phones:    e.catalog.Phones,
		Report:    e.catalog.Report,
		Features:  e.features,
		Index:     e.index,
	})
}

// Unmarshal 由快照恢复引擎。opts 只影响运行期行为（日志、默认条数、Pipeline），
// 不会改变快照中冻结的特征与索引。
func Unmarshal(data []byte, opts ...Option) (*Engine, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, corrupt(err)
	}
	if s.Version != SnapshotVersion {
		return nil, corrupt(fmt.Errorf("unsupported version %d", s.Version))
	}
	n := len(s.Phones)
	if n == 0 || s.Features == nil || s.Index == nil || s.Features.Bounds == nil {
		return nil, corrupt(fmt.Errorf("missing sections"))
	}
	if s.Features.Len() != n || len(s.Features.Vectors) != n || len(s.Index.Docs) != n {
		return nil, corrupt(fmt.Errorf("section sizes disagree with %d phones", n))
	}
	index, err := recall.RestoreTFIDF(s.Index.Vocabulary, s.Index.IDF, s.Index.Docs)
	if err != nil {
		return nil, corrupt(err)
	}

	e := &Engine{
		id:        s.ID,
		createdAt: s.CreatedAt,
		catalog:   &catalog.Catalog{Phones: s.Phones, Report: s.Report},
		features:  s.Features,
		index:     index,
		opts:      newOptions(opts),
	}
	if err := e.wire(); err != nil {
		return nil, err
	}
	metrics.SetEngineSize(n, len(index.Vocabulary))
	e.opts.log.Info().
		Str("engine_id", e.id).
		Time("created_at", e.createdAt).
		Int("phones", n).
		Msg("engine restored from snapshot")
	return e, nil
}

func corrupt(err error) error {
	return core.NewDomainErrorWithCause(ErrSnapshotCorrupt.Module, ErrSnapshotCorrupt.Code, ErrSnapshotCorrupt.Message, err)
}

// Save 把快照写入 store。
func (e *Engine) Save(ctx context.Context, s core.Store, key string, ttl ...int) error {
	data, err := e.MarshalBinary()
	if err == nil {
		err = s.Set(ctx, key, data, ttl...)
	}
	metrics.RecordSnapshot("save", s.Name(), err)
	if err != nil {
		return fmt.Errorf("engine: save snapshot %s: %w", key, err)
	}
	e.opts.log.Info().Str("engine_id", e.id).Str("store", s.Name()).Str("key", key).Int("bytes", len(data)).Msg("snapshot saved")
	return nil
}

// Load 从 store 读取快照并恢复引擎。快照不存在时返回的错误满足 core.IsStoreNotFound。
func Load(ctx context.Context, s core.Store, key string, opts ...Option) (*Engine, error) {
	data, err := s.Get(ctx, key)
	if err == nil {
		var e *Engine
		e, err = Unmarshal(data, opts...)
		metrics.RecordSnapshot("load", s.Name(), err)
		return e, err
	}
	metrics.RecordSnapshot("load", s.Name(), err)
	return nil, fmt.Errorf("engine: load snapshot %s: %w", key, err)
}
