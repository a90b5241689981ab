package loader

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/schema"
)

// decodeXLSX reads the configured sheet of a workbook. An exact sheet name
// wins; otherwise an accent/case-insensitive match is accepted.
func decodeXLSX(source string, data []byte, cfg *config) (*engine.Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: source, Op: "parse", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	sheet := resolveSheet(cfg.sheet, sheets)
	if sheet == "" {
		return nil, &SheetNotFoundError{Source: source, Sheet: cfg.sheet, Available: sheets}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Source: source, Op: "parse", Err: err}
	}
	if len(rows) == 0 {
		return buildDataset(source, table{}, cfg)
	}
	return buildDataset(source, table{headers: rows[0], rows: rows[1:], firstRow: 2}, cfg)
}

func resolveSheet(want string, available []string) string {
	for _, s := range available {
		if s == want {
			return s
		}
	}
	norm := schema.NormalizeName(want)
	for _, s := range available {
		if schema.NormalizeName(s) == norm {
			return s
		}
	}
	return ""
}
