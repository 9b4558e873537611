// Package catalog 负责把原始记录转为类型化的手机目录表，并提供目录统计。
//
// 所有“脏数据”在这里统一处理：数值字段无法解析时使用 core.DefaultScore，
// 同时写入 DefaultReport，调用方可以断言“有 N 个字段被默认填充”。
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/top3pick/phonerec/core"
	"github.com/top3pick/phonerec/pkg/conv"
)

// Record 是一条未校验的原始记录（CSV 行、JSON 对象、YAML 映射）。
type Record map[string]any

// Columns 是扁平化目录表的列顺序。
var Columns = []string{
	"id", "model", "brand", "price", "launch_year", "processor", "ram", "storage",
	"display", "battery", "best_for", "gaming", "camera", "battery_score",
	"performance", "display_score", "reason", "rating",
}

// ErrDuplicateID 表示目录中出现了重复的手机 ID。
var ErrDuplicateID = core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: duplicate phone id")

// Catalog 是校验后的目录表，加载后不可变。
type Catalog struct {
	Phones []core.Phone
	Report DefaultReport
}

// Len 返回目录条数。
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Phones)
}

// DefaultEntry 记录一个被默认填充的字段。
type DefaultEntry struct {
	Row   int    `json:"row"`
	ID    string `json:"id"`
	Field string `json:"field"`
	Raw   string `json:"raw"`
}

// DefaultReport 汇总入库校验时被默认填充的字段。
type DefaultReport struct {
	Entries []DefaultEntry `json:"entries"`
}

// Count 返回被默认填充的字段总数。
func (r DefaultReport) Count() int { return len(r.Entries) }

// Records 返回至少有一个字段被默认填充的记录数。
func (r DefaultReport) Records() int {
	rows := make(map[int]struct{}, len(r.Entries))
	for _, e := range r.Entries {
		rows[e.Row] = struct{}{}
	}
	return len(rows)
}

// Fields 按字段统计默认填充次数。
func (r DefaultReport) Fields() map[string]int {
	out := make(map[string]int)
	for _, e := range r.Entries {
		out[e.Field]++
	}
	return out
}

func (r *DefaultReport) add(row int, id, field string, raw any) {
	r.Entries = append(r.Entries, DefaultEntry{Row: row, ID: id, Field: field, Raw: conv.ToText(raw)})
}

// Normalize 是入库校验：把原始记录转为 core.Phone。
//
//   - 文本字段缺失 → ""
//   - 数值特征字段缺失或无法解析 → core.DefaultScore（price 取其整数部分），并记入报告
//   - display_score 缺失 → core.DefaultScore，不记入报告
//   - rating 缺失 → core.DefaultScore
//   - id 为空 → 由 brand + model 派生，并记入报告
//   - id 重复 → ErrDuplicateID
func Normalize(records []Record) (*Catalog, error) {
	c := &Catalog{Phones: make([]core.Phone, 0, len(records))}
	seen := make(map[string]int, len(records))

	for row, rec := range records {
		p := core.Phone{
			ID:        text(rec, "id"),
			Model:     text(rec, "model"),
			Brand:     text(rec, "brand"),
			Processor: text(rec, "processor"),
			RAM:       text(rec, "ram"),
			Storage:   text(rec, "storage"),
			Display:   text(rec, "display"),
			Battery:   text(rec, "battery"),
			BestFor:   text(rec, "best_for"),
			Reason:    text(rec, "reason"),
		}
		if p.ID == "" {
			p.ID = slug(p.Brand, p.Model, row)
			if _, taken := seen[p.ID]; taken {
				p.ID = fmt.Sprintf("%s-%d", p.ID, row)
			}
			c.Report.add(row, p.ID, "id", rec["id"])
		}
		if first, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q (rows %d and %d)", ErrDuplicateID, p.ID, first, row)
		}
		seen[p.ID] = row

		score := func(field string) float64 {
			f, ok := conv.ToFloat64(rec[field])
			if !ok {
				c.Report.add(row, p.ID, field, rec[field])
				return core.DefaultScore
			}
			return f
		}
		// display_score 不属于数值特征，缺失时静默取默认值，不计入报告
		quiet := func(field string) float64 {
			if f, ok := conv.ToFloat64(rec[field]); ok {
				return f
			}
			return core.DefaultScore
		}

		price := score("price")
		if price < 0 {
			c.Report.add(row, p.ID, "price", rec["price"])
			price = core.DefaultScore
		}
		p.Price = int(price)
		p.Gaming = score("gaming")
		p.Camera = score("camera")
		p.BatteryScore = score("battery_score")
		p.Performance = score("performance")
		p.DisplayScore = quiet("display_score")
		p.Rating = score("rating")

		// launch_year 不参与任何计算，缺失时保持 0
		if y, ok := conv.ToInt(rec["launch_year"]); ok {
			p.LaunchYear = y
		}

		c.Phones = append(c.Phones, p)
	}
	return c, nil
}

// FromPhones 用已类型化的记录构造目录（仍校验 ID 唯一性）。
func FromPhones(phones []core.Phone) (*Catalog, error) {
	seen := make(map[string]int, len(phones))
	for i, p := range phones {
		if first, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q (rows %d and %d)", ErrDuplicateID, p.ID, first, i)
		}
		seen[p.ID] = i
	}
	out := make([]core.Phone, len(phones))
	copy(out, phones)
	return &Catalog{Phones: out}, nil
}

func text(rec Record, key string) string {
	return strings.TrimSpace(conv.ToText(rec[key]))
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(brand, model string, row int) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(brand+" "+model), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fmt.Sprintf("phone-%d", row)
	}
	return s
}
