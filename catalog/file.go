package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ReadFile 按扩展名读取目录文件：.csv / .yaml / .yml / .json（记录数组）。
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".yaml", ".yml":
		return ReadYAML(f)
	case ".json":
		var recs []Record
		if err := json.NewDecoder(f).Decode(&recs); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return recs, nil
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", path)
	}
}

// LoadFile 读取并校验目录文件。
func LoadFile(path string) (*Catalog, error) {
	recs, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Normalize(recs)
}

// SaveCSV 把目录写为 CSV 文件（先写临时文件再重命名）。
func SaveCSV(path string, c *Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.csv")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, c.Phones); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
