package catalog

// MaxStatsUseCases 是统计中返回的用途取值上限。
const MaxStatsUseCases = 10

// PriceRange 是价格统计。
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
	Avg int `json:"avg"` // 截断取整
}

// Stats 是目录的只读统计，每次调用重新计算。
type Stats struct {
	TotalPhones int        `json:"total_phones"`
	Brands      []string   `json:"brands"`
	PriceRange  PriceRange `json:"price_range"`
	UseCases    []string   `json:"use_cases"`
}

// Stats 计算目录统计：品牌与用途按首次出现的顺序去重，用途最多 MaxStatsUseCases 个。
func (c *Catalog) Stats() Stats {
	st := Stats{
		Brands:   []string{},
		UseCases: []string{},
	}
	if c.Len() == 0 {
		return st
	}
	st.TotalPhones = len(c.Phones)

	brands := make(map[string]struct{})
	useCases := make(map[string]struct{})
	var sum int64
	st.PriceRange.Min = c.Phones[0].Price
	st.PriceRange.Max = c.Phones[0].Price

	for _, p := range c.Phones {
		if _, ok := brands[p.Brand]; !ok {
			brands[p.Brand] = struct{}{}
			st.Brands = append(st.Brands, p.Brand)
		}
		if _, ok := useCases[p.BestFor]; !ok && len(st.UseCases) < MaxStatsUseCases {
			useCases[p.BestFor] = struct{}{}
			st.UseCases = append(st.UseCases, p.BestFor)
		}
		if p.Price < st.PriceRange.Min {
			st.PriceRange.Min = p.Price
		}
		if p.Price > st.PriceRange.Max {
			st.PriceRange.Max = p.Price
		}
		sum += int64(p.Price)
	}
	st.PriceRange.Avg = int(sum / int64(len(c.Phones)))
	return st
}
