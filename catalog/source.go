package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/top3pick/phonerec/pkg/conv"
)

// DefaultBrands 是品牌源文件的默认列表（<brand>.json）。
var DefaultBrands = []string{"samsung", "realme", "redmi", "poco", "apple", "vivo", "oppo", "motorola"}

// brandFile 是单个品牌源文件的结构：{"brand": "Samsung", "phones": [...]}。
type brandFile struct {
	Brand  string           `json:"brand"`
	Phones []map[string]any `json:"phones"`
}

// BrandLoader 从品牌 JSON 目录并发读取原始记录。
type BrandLoader struct {
	Dir    string
	Brands []string

	// MaxConcurrent 最大并发读取数（0 表示无限制）
	MaxConcurrent int

	Logger zerolog.Logger
}

// Load 读取所有品牌文件并扁平化为记录，输出顺序与 Brands 一致。
// 缺失或格式错误的品牌文件记录日志后跳过，不中断整体加载。
func (l *BrandLoader) Load(ctx context.Context) ([]Record, error) {
	brands := l.Brands
	if len(brands) == 0 {
		brands = DefaultBrands
	}

	perBrand := make([][]Record, len(brands))
	var (
		mu      sync.Mutex
		skipped []string
	)

	eg, egCtx := errgroup.WithContext(ctx)
	if l.MaxConcurrent > 0 {
		eg.SetLimit(l.MaxConcurrent)
	}

	for i, brand := range brands {
		i, brand := i, brand
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			recs, err := l.loadBrand(brand)
			if err != nil {
				l.Logger.Warn().Err(err).Str("brand", brand).Msg("skipping brand file")
				mu.Lock()
				skipped = append(skipped, brand)
				mu.Unlock()
				return nil
			}
			perBrand[i] = recs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []Record
	for _, recs := range perBrand {
		out = append(out, recs...)
	}
	l.Logger.Info().
		Int("records", len(out)).
		Int("brands", len(brands)-len(skipped)).
		Strs("skipped", skipped).
		Msg("brand files loaded")
	return out, nil
}

func (l *BrandLoader) loadBrand(brand string) ([]Record, error) {
	path := filepath.Join(l.Dir, brand+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var bf brandFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	brandName := bf.Brand
	if brandName == "" {
		brandName = capitalize(brand)
	}

	recs := make([]Record, 0, len(bf.Phones))
	for _, raw := range bf.Phones {
		recs = append(recs, flatten(brandName, raw))
	}
	return recs, nil
}

// flatten 把品牌文件中的一条手机对象投影为扁平记录。
func flatten(brand string, raw map[string]any) Record {
	rec := Record{
		"id":          raw["id"],
		"model":       raw["model"],
		"brand":       brand,
		"price":       raw["price"],
		"launch_year": raw["launch_year"],
		"processor":   raw["processor"],
		"ram":         firstOf(raw["ram"]),
		"storage":     firstOf(raw["storage"]),
		"gaming":      raw["gaming"],
		"camera":      raw["camera"],
		"performance": raw["performance"],
		"reason":      raw["reason"],
		"rating":      raw["rating"],
	}

	// display 可能是 {"size": 6.7} 对象，也可能直接是显示评分
	switch d := raw["display"].(type) {
	case map[string]any:
		rec["display"] = conv.ToText(d["size"])
	default:
		if _, ok := conv.ToFloat64(d); ok {
			if _, isStr := d.(string); !isStr {
				rec["display_score"] = d
			}
		}
	}
	if b, ok := raw["battery"].(map[string]any); ok {
		rec["battery"] = conv.ToText(b["capacity"])
	}
	if v, ok := raw["battery_score"]; ok {
		rec["battery_score"] = v
	}
	if tags := conv.SliceAnyToString(raw["best_for"]); tags != nil {
		rec["best_for"] = strings.Join(tags, ", ")
	}
	return rec
}

// firstOf 对列表取第一个元素，标量原样返回。
func firstOf(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		return list[0]
	}
	return v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
