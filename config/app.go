package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// DefaultConfigPaths 按顺序查找配置文件，使用第一个存在的。
var DefaultConfigPaths = []string{
	"phonerec.yaml",
	"phonerec.yml",
	"/etc/phonerec/phonerec.yaml",
}

const (
	// ConfigPathEnvVar 指定配置文件路径
	ConfigPathEnvVar = "CONFIG_PATH"

	// EnvPrefix 是环境变量前缀，层级用 "__" 分隔：PHONEREC_SERVER__PORT -> server.port
	EnvPrefix = "PHONEREC_"
)

// 快照后端
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// App 是服务的全部配置。
type App struct {
	Server    ServerConfig    `koanf:"server"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Data      DataConfig      `koanf:"data"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Engine    EngineConfig    `koanf:"engine"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr 返回监听地址。
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CORSConfig 只作用于 /api/*；/health 始终允许任意来源。
type CORSConfig struct {
	APIOrigins       []string `koanf:"api_origins"`
	Methods          []string `koanf:"methods"`
	Headers          []string `koanf:"headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// DataConfig 描述训练数据来源。
type DataConfig struct {
	BrandDir      string   `koanf:"brand_dir"`
	Brands        []string `koanf:"brands"`
	CSVPath       string   `koanf:"csv_path"`
	MaxConcurrent int      `koanf:"max_concurrent"`
}

type SnapshotConfig struct {
	Backend string      `koanf:"backend"`
	Path    string      `koanf:"path"` // file 后端的目录
	Key     string      `koanf:"key"`
	TTL     int         `koanf:"ttl"` // 秒，<=0 不过期
	Redis   RedisConfig `koanf:"redis"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type EngineConfig struct {
	TopK         int    `koanf:"top_k"`
	MaxTopK      int    `koanf:"max_top_k"`
	MaxFeatures  int    `koanf:"max_features"`
	Degenerate   string `koanf:"degenerate"` // passthrough | neutral
	PipelineFile string `koanf:"pipeline_file"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json | console
	Caller bool   `koanf:"caller"`
}

// Defaults 返回内置默认配置。
func Defaults() *App {
	return &App{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5001,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		CORS: CORSConfig{
			APIOrigins:       []string{"https://top3pick.in", "http://localhost:3000", "http://localhost:5000"},
			Methods:          []string{"GET", "POST", "OPTIONS"},
			Headers:          []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Requests: 120,
			Window:   time.Minute,
		},
		Data: DataConfig{
			BrandDir:      "data",
			CSVPath:       "phones_data.csv",
			MaxConcurrent: 4,
		},
		Snapshot: SnapshotConfig{
			Backend: BackendFile,
			Path:    "models",
			Key:     "phone_recommender.snapshot",
			Redis:   RedisConfig{Addr: "127.0.0.1:6379"},
		},
		Engine: EngineConfig{
			TopK:        5,
			MaxTopK:     100,
			MaxFeatures: 100,
			Degenerate:  "passthrough",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序叠加配置，后者覆盖前者。
// path 为空时依次查找 CONFIG_PATH 与 DefaultConfigPaths，都不存在则跳过文件层。
func Load(path string) (*App, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &App{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey: PHONEREC_SNAPSHOT__REDIS__ADDR -> snapshot.redis.addr
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// 环境变量中以逗号分隔的列表字段
var sliceFields = []string{
	"cors.api_origins",
	"cors.methods",
	"cors.headers",
	"data.brands",
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceFields {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0, 4)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// Validate 检查配置取值。
func (c *App) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Snapshot.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Snapshot.Redis.Addr == "" {
			return fmt.Errorf("snapshot.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("snapshot.backend must be one of file, redis, memory: %q", c.Snapshot.Backend)
	}
	if c.Snapshot.Key == "" {
		return fmt.Errorf("snapshot.key is required")
	}
	if c.Engine.TopK <= 0 {
		return fmt.Errorf("engine.top_k must be positive: %d", c.Engine.TopK)
	}
	if c.Engine.MaxTopK < c.Engine.TopK {
		return fmt.Errorf("engine.max_top_k (%d) must be >= engine.top_k (%d)", c.Engine.MaxTopK, c.Engine.TopK)
	}
	switch c.Engine.Degenerate {
	case "passthrough", "neutral":
	default:
		return fmt.Errorf("engine.degenerate must be passthrough or neutral: %q", c.Engine.Degenerate)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate_limit requires positive requests and window")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console: %q", c.Log.Format)
	}
	return nil
}
