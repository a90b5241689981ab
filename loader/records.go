package loader

import (
	"math"
	"strconv"
	"strings"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/schema"
)

// ============================================================================
// TABLE → DATASET
// ============================================================================
// Every source decodes into a table of strings first; this file is the only
// place rows become engine.Records.
//
//   1. Trim headers, match onto canonical keys (ColumnMissingError)
//   2. Skip fully blank rows silently
//   3. Skip rows with blank region or axis (WARN with the row number)
//   4. Parse ordinals: "5", "5.0" or a scale label; anything else is 0
// ============================================================================

type table struct {
	headers  []string
	rows     [][]string
	firstRow int // source row number of rows[0]
}

func buildDataset(source string, t table, cfg *config) (*engine.Dataset, error) {
	headers := schema.TrimHeaders(t.headers)
	cols, missing := schema.MatchColumns(headers)
	if len(missing) > 0 {
		required := make([]string, len(schema.RequiredFields))
		for i, key := range schema.RequiredFields {
			required[i] = schema.PreferredHeader(key)
		}
		return nil, &ColumnMissingError{
			Source:   source,
			Required: required,
			Found:    headers,
			Missing:  missing,
		}
	}

	log := cfg.logger.With(logging.String("source", source))
	records := make([]engine.Record, 0, len(t.rows))
	skipped := 0

	for i, row := range t.rows {
		if blankRow(row) {
			continue
		}
		rowNum := t.firstRow + i
		rec := engine.Record{
			Row:            rowNum,
			Region:         cols.Cell(row, engine.FieldRegion),
			Axis:           cols.Cell(row, engine.FieldAxis),
			Theme:          cols.Cell(row, engine.FieldTheme),
			Need:           cols.Cell(row, engine.FieldNeed),
			TechCategories: cols.Cell(row, engine.FieldTechCategories),
			Impact:         parseOrdinal(cols.Cell(row, engine.FieldImpact), cfg.scale),
			Innovation:     parseOrdinal(cols.Cell(row, engine.FieldInnovation), cfg.scale),
		}
		if rec.Region == "" || rec.Axis == "" {
			skipped++
			log.Warn("row skipped: region and axis are required",
				logging.Int("row", rowNum),
				logging.String("region", rec.Region),
				logging.String("axis", rec.Axis))
			continue
		}
		records = append(records, rec)
	}

	ds, err := engine.NewDataset(records, source)
	if err != nil {
		return nil, &LoadError{Source: source, Op: "parse", Err: err}
	}
	log.Info("dataset loaded",
		logging.Int("records", ds.Len()),
		logging.Int("skipped", skipped),
		logging.Int("regions", len(ds.Regions())),
		logging.Int("axes", len(ds.Axes())))
	return ds, nil
}

// parseOrdinal accepts integer or integral float text ("5", "5.0") and the
// scale's labels ("Alto"). Blank and unrecognized cells are 0.
func parseOrdinal(cell string, scale engine.OrdinalScale) int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0
	}
	if n, err := strconv.Atoi(cell); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64); err == nil {
		if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) {
			return int(f)
		}
		return 0
	}
	if v, ok := scale.Value(cell); ok {
		return v
	}
	for _, label := range scale.Labels() {
		if schema.NormalizeName(label) == schema.NormalizeName(cell) {
			v, _ := scale.Value(label)
			return v
		}
	}
	return 0
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
