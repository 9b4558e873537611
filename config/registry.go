package config

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/top3pick/phonerec/pipeline"
)

// 内置 Node 在 config/builders 的 init 中注册，入口处需要
// import _ "github.com/top3pick/phonerec/config/builders"。

// NodeBuilder 与 pipeline.NodeBuilder 一致。
type NodeBuilder = pipeline.NodeBuilder

var registry = struct {
	sync.RWMutex
	builders map[string]NodeBuilder
}{builders: make(map[string]NodeBuilder)}

// Register 注册一种 Node 类型。类型名为空、builder 为 nil 或重复注册时 panic，
// 与 database/sql 的驱动注册一致。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		panic("config: Register with empty type or nil builder")
	}
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.builders[typeName]; dup {
		panic("config: Register called twice for node type " + typeName)
	}
	registry.builders[typeName] = builder
}

// SupportedTypes 返回已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	registry.RLock()
	defer registry.RUnlock()
	types := make([]string, 0, len(registry.builders))
	for t := range registry.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含全部已注册类型的 NodeFactory 快照。
func DefaultFactory() *pipeline.NodeFactory {
	registry.RLock()
	defer registry.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range registry.builders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 在构建前检查 pipeline 配置：每个节点都要有已注册的类型。
// 所有问题一次性返回。nil 配置视为合法。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	registry.RLock()
	defer registry.RUnlock()

	var errs []error
	for i, nc := range cfg.Pipeline.Nodes {
		switch _, ok := registry.builders[nc.Type]; {
		case nc.Type == "":
			errs = append(errs, fmt.Errorf("node %d: missing type", i))
		case !ok:
			errs = append(errs, fmt.Errorf("node %d: unsupported type %q", i, nc.Type))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	types := make([]string, 0, len(registry.builders))
	for t := range registry.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	errs = append(errs, fmt.Errorf("supported types: %v", types))
	return fmt.Errorf("pipeline %q: %w", cfg.Pipeline.Name, errors.Join(errs...))
}
