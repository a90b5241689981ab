package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// TEXT BUILDER — One-line summary shown above the detail table
// ============================================================================

// BuildSummary describes what the current view shows. An empty view is a
// valid state and gets its own message.
func BuildSummary(c Criteria, records int) string {
	scope := "todas las regiones"
	switch {
	case c.FocusedRegion != "":
		scope = fmt.Sprintf("la región de %s", c.FocusedRegion)
	case len(c.Regions) == 1:
		scope = fmt.Sprintf("la región de %s", c.Regions[0])
	case len(c.Regions) > 1:
		scope = strings.Join(c.Regions, ", ")
	}

	if records == 0 {
		return fmt.Sprintf("No hay datos disponibles para %s con los filtros actuales.", scope)
	}

	noun := "necesidades"
	if records == 1 {
		noun = "necesidad"
	}
	return fmt.Sprintf("Mostrando %s %s para %s.", FormatInt(records), noun, scope)
}
