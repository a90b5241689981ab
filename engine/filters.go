package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Multi-Criteria Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL active predicates per record in one loop.
// Returns a SubView (index list into the dataset), no data copy.
// Predicates are total: blank fields never raise, they just don't match.
// ============================================================================

type predicate func(Record) bool

// Apply returns the view of records satisfying every active criterion.
// Empty criteria return the dataset itself.
func Apply(ds *Dataset, c Criteria, scale OrdinalScale) RecordView {
	preds := buildPredicates(c, scale)
	if len(preds) == 0 {
		return ds
	}

	n := ds.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		r := ds.Record(i)
		pass := true
		for _, p := range preds {
			if !p(r) {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}
	return newSubView(ds, indices)
}

func buildPredicates(c Criteria, scale OrdinalScale) []predicate {
	var preds []predicate

	// Focus short-circuits the multi-region selection.
	if c.FocusedRegion != "" {
		focus := c.FocusedRegion
		preds = append(preds, func(r Record) bool { return r.Region == focus })
	} else if len(c.Regions) > 0 {
		preds = append(preds, memberOf(FieldRegion, c.Regions))
	}

	if len(c.Axes) > 0 {
		preds = append(preds, memberOf(FieldAxis, c.Axes))
	}
	if len(c.Themes) > 0 {
		preds = append(preds, memberOf(FieldTheme, c.Themes))
	}
	// Blank categories restrict nothing; an all-blank selection is no filter.
	if needles := nonBlank(c.Categories); len(needles) > 0 {
		preds = append(preds, containsAny(needles))
	}
	if len(c.Impact) > 0 {
		set := ordinalSet(c.Impact, scale)
		preds = append(preds, func(r Record) bool { return set[r.Impact] })
	}
	if len(c.Innovation) > 0 {
		set := ordinalSet(c.Innovation, scale)
		preds = append(preds, func(r Record) bool { return set[r.Innovation] })
	}
	return preds
}

// memberOf is an exact, case-sensitive membership test on a string field.
func memberOf(field string, allowed []string) predicate {
	set := toSet(allowed)
	return func(r Record) bool {
		v := r.Field(field)
		return v != "" && set[v]
	}
}

// containsAny keeps a record when any selected category is a substring of
// its raw category cell. "AI" also matches "AI Ethics".
func containsAny(needles []string) predicate {
	return func(r Record) bool {
		raw := r.TechCategories
		if strings.TrimSpace(raw) == "" {
			return false
		}
		for _, n := range needles {
			if strings.Contains(raw, n) {
				return true
			}
		}
		return false
	}
}

// ordinalSet translates labels to values. Unknown labels are dropped, so a
// selection of only unknown labels matches nothing. 0 (blank) never matches.
func ordinalSet(labels []string, scale OrdinalScale) map[int]bool {
	set := make(map[int]bool, len(labels))
	for _, l := range labels {
		if v, ok := scale.Value(l); ok && v != 0 {
			set[v] = true
		}
	}
	return set
}

func nonBlank(items []string) []string {
	var out []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
