package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/top3pick/phonerec/core"
)

// ReadCSV 读取扁平化目录表，首行为表头；列顺序不限，多余列被忽略。
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV 按 Columns 顺序写出目录表。
func WriteCSV(w io.Writer, phones []core.Phone) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, p := range phones {
		if err := cw.Write(phoneRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func phoneRow(p core.Phone) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		p.ID, p.Model, p.Brand, strconv.Itoa(p.Price), strconv.Itoa(p.LaunchYear),
		p.Processor, p.RAM, p.Storage, p.Display, p.Battery, p.BestFor,
		f(p.Gaming), f(p.Camera), f(p.BatteryScore), f(p.Performance), f(p.DisplayScore),
		p.Reason, f(p.Rating),
	}
}

// ReadYAML 读取 YAML 格式的目录：顶层为记录列表，或 {phones: [...]}。
func ReadYAML(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}

	var list []Record
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Phones []Record `yaml:"phones"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return wrapped.Phones, nil
}
