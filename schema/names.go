package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// NAME NORMALIZATION — accent/case folding for headers and region names
// ============================================================================
// "  Región  de Ñuble " → "region de nuble"
//
// Used only for lookups. Grouping keys and displayed values always keep the
// raw text from the source.
// ============================================================================

// NormalizeName folds case, strips diacritics and collapses whitespace.
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// SortNames orders names alphabetically using Spanish collation, so that
// "Ñuble" sorts after "Maule" and "Ñ" is not pushed past "Z" by byte order.
func SortNames(names []string) {
	collate.New(language.Spanish, collate.IgnoreCase).SortStrings(names)
}

// UniqueSorted returns the distinct non-blank names, collated.
func UniqueSorted(names ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range names {
		for _, n := range list {
			n = strings.TrimSpace(n)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	SortNames(out)
	return out
}
