package core

// EngineDefaults 提供引擎各环节的默认值。
type EngineDefaults interface {
	// DefaultTopK 返回默认返回条数
	DefaultTopK() int

	// MaxVocabulary 返回 TF-IDF 词表上限
	MaxVocabulary() int

	// NeutralUseCase 返回不做用途过滤的哨兵值
	NeutralUseCase() string
}

// DefaultEngineConfig 是默认实现。
type DefaultEngineConfig struct{}

func (c *DefaultEngineConfig) DefaultTopK() int {
	return 5
}

func (c *DefaultEngineConfig) MaxVocabulary() int {
	return 100
}

func (c *DefaultEngineConfig) NeutralUseCase() string {
	return "overall"
}

// Defaults 是包级默认配置实例。
var Defaults EngineDefaults = &DefaultEngineConfig{}
