package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
)

// ============================================================================
// CSV SOURCE
// ============================================================================
// Spreadsheet exports in Spanish locales often use ';' as the separator;
// the header line decides which one applies. A UTF-8 BOM is stripped.
// Malformed rows are skipped with a warning.
// ============================================================================

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeCSV(source string, data []byte, cfg *config) (*engine.Dataset, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectComma(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return buildDataset(source, table{}, cfg)
	}
	if err != nil {
		return nil, &LoadError{Source: source, Op: "parse", Err: err}
	}

	var rows [][]string
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			cfg.logger.Warn("malformed csv row skipped",
				logging.String("source", source),
				logging.Int("row", line),
				logging.Err(err))
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, row)
	}
	return buildDataset(source, table{headers: headers, rows: rows, firstRow: 2}, cfg)
}

func detectComma(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	h := string(header)
	if strings.Count(h, ";") > strings.Count(h, ",") {
		return ';'
	}
	return ','
}
