package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spektr-org/needsradar/engine"
)

// ============================================================================
// CSV / JSON OUTPUT — Sheets-ready exports
// ============================================================================

// WriteChartCSV writes a chart as columns: one label column plus one value
// column per series. Hierarchy charts are written as id, parent, label,
// value rows.
func WriteChartCSV(w io.Writer, chart *engine.ChartConfig) error {
	cw := csv.NewWriter(w)

	switch {
	case chart == nil:
		_ = cw.Write([]string{"Result", "No data"})
	case len(chart.Nodes) > 0:
		_ = cw.Write([]string{"id", "parent", "label", "value"})
		for _, n := range chart.Nodes {
			_ = cw.Write([]string{n.ID, n.Parent, n.Label, FormatNumber(n.Value)})
		}
	case len(chart.Series) == 0:
		_ = cw.Write([]string{"Result", "No data"})
	default:
		xLabel := chart.XAxis
		if xLabel == "" {
			xLabel = "Label"
		}
		headers := []string{xLabel}
		for _, s := range chart.Series {
			headers = append(headers, s.Name)
		}
		_ = cw.Write(headers)

		// Keys, not truncated ticks, identify rows.
		for i, d := range chart.Series[0].Data {
			row := []string{d.Key}
			for _, s := range chart.Series {
				if i < len(s.Data) {
					row = append(row, FormatNumber(s.Data[i].Value))
				} else {
					row = append(row, "")
				}
			}
			_ = cw.Write(row)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTableCSV writes the detail table with its column labels as header.
func WriteTableCSV(w io.Writer, table *engine.TableData) error {
	cw := csv.NewWriter(w)
	if table == nil {
		_ = cw.Write([]string{"Result", "No data"})
	} else {
		headers := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			headers[i] = c.Label
		}
		_ = cw.Write(headers)
		for _, row := range table.Rows {
			_ = cw.Write(row)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON encodes v, indented when pretty is set.
func WriteJSON(w io.Writer, v interface{}, pretty bool) error {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("render: marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// FormatNumber prints whole numbers without decimals, others with two.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
