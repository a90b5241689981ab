package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Detail table over the filtered view
// ============================================================================
// One row per record. Ordinals are shown through the scale; unmapped or
// blank values render as N/A.
// ============================================================================

var detailColumns = []Column{
	{Key: FieldRegion, Label: "Región", Type: "text", Align: "left"},
	{Key: FieldAxis, Label: "Eje", Type: "text", Align: "left"},
	{Key: FieldTheme, Label: "Temática", Type: "text", Align: "left"},
	{Key: FieldNeed, Label: "Necesidad", Type: "text", Align: "left"},
	{Key: FieldTechCategories, Label: "Categorías", Type: "text", Align: "left"},
	{Key: FieldImpact, Label: "Impacto", Type: "ordinal", Align: "center"},
	{Key: FieldInnovation, Label: "Innovación", Type: "ordinal", Align: "center"},
}

// BuildDetailTable renders every record of the view as a table row.
func BuildDetailTable(view RecordView, scale OrdinalScale, title string) *TableData {
	columns := make([]Column, len(detailColumns))
	copy(columns, detailColumns)

	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		r := view.Record(i)
		rows = append(rows, []string{
			orNA(r.Region),
			orNA(r.Axis),
			orNA(r.Theme),
			orNA(r.Need),
			orNA(r.TechCategories),
			scale.Label(r.Impact),
			scale.Label(r.Innovation),
		})
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"records": fmt.Sprintf("%d", view.Len()),
			},
		},
	}
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
