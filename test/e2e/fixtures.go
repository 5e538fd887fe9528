package e2e

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/tanya/internal/knowledge"
)

// SupportedKnowledgeExtensions lists the knowledge base file formats exercised by E2E tests.
var SupportedKnowledgeExtensions = []string{".yaml", ".yml", ".json", ".xlsx"}

// WriteKnowledgeFile writes pairs to path in the format given by ext.
func WriteKnowledgeFile(path, ext string, pairs []knowledge.Pair) error {
	switch ext {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(pairs)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	case ".json":
		data, err := json.MarshalIndent(pairs, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	case ".xlsx":
		return writeXlsx(path, pairs)
	default:
		return fmt.Errorf("unsupported extension %q", ext)
	}
}

func writeXlsx(path string, pairs []knowledge.Pair) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"question", "answer"}); err != nil {
		return err
	}
	for i, p := range pairs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{p.Question, p.Answer}); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
