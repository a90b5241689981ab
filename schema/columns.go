package schema

import (
	"strings"

	"github.com/spektr-org/needsradar/engine"
)

// ============================================================================
// COLUMNS — source header → canonical field key
// ============================================================================
// Source workbooks use Spanish, human-written headers. Each canonical key
// accepts a small alias list; matching goes through NormalizeName so
// "Región", "region" and " REGION " all resolve to engine.FieldRegion.
// ============================================================================

// RequiredFields lists every canonical key a source must provide, in
// output column order.
var RequiredFields = []string{
	engine.FieldRegion,
	engine.FieldAxis,
	engine.FieldTheme,
	engine.FieldNeed,
	engine.FieldTechCategories,
	engine.FieldImpact,
	engine.FieldInnovation,
}

// HeaderAliases maps each canonical key to the headers accepted for it.
// The first alias is the preferred source header.
var HeaderAliases = map[string][]string{
	engine.FieldRegion: {"Región", "Region"},
	engine.FieldAxis: {
		"Ejes traccionantes/dimensiones priorizadas",
		"Ejes traccionantes",
		"Dimensiones priorizadas",
		"Eje",
		"Axis",
	},
	engine.FieldTheme:          {"Temática específica", "Temática", "Theme"},
	engine.FieldNeed:           {"Necesidad", "Necesidades", "Need"},
	engine.FieldTechCategories: {"Categorías tecnológicas", "Categoría tecnológica", "Tech categories"},
	engine.FieldImpact:         {"Impacto", "Impact"},
	engine.FieldInnovation:     {"Innovación", "Innovation"},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	idx := make(map[string]string)
	for key, aliases := range HeaderAliases {
		idx[NormalizeName(key)] = key
		idx[NormalizeName(strings.ReplaceAll(key, "_", " "))] = key
		for _, a := range aliases {
			idx[NormalizeName(a)] = key
		}
	}
	return idx
}

// ColumnMap maps canonical keys to column positions in a source table.
type ColumnMap map[string]int

// CanonicalKey resolves a raw header to its canonical key, or "".
func CanonicalKey(header string) string {
	return aliasIndex[NormalizeName(header)]
}

// TrimHeaders returns headers with surrounding whitespace removed.
func TrimHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// MatchColumns maps headers onto RequiredFields. The first header resolving
// to a key wins. missing lists, in RequiredFields order, the preferred
// header of every key that no column resolved to.
func MatchColumns(headers []string) (cols ColumnMap, missing []string) {
	cols = make(ColumnMap, len(RequiredFields))
	for i, h := range headers {
		key := CanonicalKey(h)
		if key == "" {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	for _, key := range RequiredFields {
		if _, ok := cols[key]; !ok {
			missing = append(missing, PreferredHeader(key))
		}
	}
	return cols, missing
}

// PreferredHeader returns the display header for a canonical key.
func PreferredHeader(key string) string {
	if aliases := HeaderAliases[key]; len(aliases) > 0 {
		return aliases[0]
	}
	return key
}

// Cell returns the trimmed value of key in row, or "" when absent.
func (m ColumnMap) Cell(row []string, key string) string {
	i, ok := m[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
