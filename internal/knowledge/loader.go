package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// LoadPairs reads question/answer pairs from path. Supported formats are .yaml/.yml and .json
// (a list of {question, answer} objects) and .xlsx (first sheet, question and answer in the
// first two columns, header row skipped). An empty path returns DefaultPairs.
func LoadPairs(path string) ([]Pair, error) {
	if path == "" {
		return DefaultPairs(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	var pairs []Pair
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pairs)
	case ".json":
		err = json.Unmarshal(data, &pairs)
	case ".xlsx":
		pairs, err = parseXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported knowledge base format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse knowledge base %s: %w", filepath.Base(path), err)
	}
	for i := range pairs {
		pairs[i].Question = strings.TrimSpace(pairs[i].Question)
		pairs[i].Answer = strings.TrimSpace(pairs[i].Answer)
	}
	return pairs, nil
}

func parseXLSX(content []byte) ([]Pair, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	var pairs []Pair
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		pairs = append(pairs, Pair{Question: row[0], Answer: row[1]})
	}
	return pairs, nil
}
