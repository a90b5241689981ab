package engine

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never copies the dataset. Filtering produces a SubView that
// holds indices into its parent.
//
// Implementations:
//   *Dataset — the full, immutable record set
//   SubView  — filtered subset (indices into parent, zero-copy)
// ============================================================================

// RecordView provides indexed, read-only access to records.
// Aggregators call Record in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	Record(index int) Record
}

var (
	_ RecordView = (*Dataset)(nil)
	_ RecordView = (*SubView)(nil)
)

// SubView is a filtered subset of a parent RecordView.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Record(i int) Record {
	if i < 0 || i >= len(v.indices) {
		return Record{}
	}
	return v.parent.Record(v.indices[i])
}

// Collect copies a view's records into a new slice.
func Collect(view RecordView) []Record {
	out := make([]Record, view.Len())
	for i := range out {
		out[i] = view.Record(i)
	}
	return out
}

// UniqueValues returns distinct non-blank values of a field, first-seen order.
func UniqueValues(view RecordView, field string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Record(i).Field(field)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}
