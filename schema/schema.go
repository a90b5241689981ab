package schema

// ============================================================================
// SCHEMA — Describes the filterable shape of a loaded dataset
// ============================================================================
// Built from a Dataset by Describe(). The HTTP API serves it as the filter
// option vocabulary, the terminal dashboard builds its pickers from it and
// the CLI prints it with `describe`.
// ============================================================================

// Match strategies for a dimension's filter.
const (
	MatchExact     = "exact"
	MatchSubstring = "substring"
	MatchOrdinal   = "ordinal"
)

// Config describes the complete filterable shape of a dataset.
type Config struct {
	Name    string `json:"name"`
	Source  string `json:"source,omitempty"`
	Records int    `json:"records"`

	Dimensions []DimensionMeta `json:"dimensions"`

	DescribedAt string `json:"describedAt,omitempty"`
}

// DimensionMeta describes one filterable field and its option vocabulary.
type DimensionMeta struct {
	Key             string   `json:"key"`
	DisplayName     string   `json:"displayName"`
	Description     string   `json:"description,omitempty"`
	Values          []string `json:"values"`
	Filterable      bool     `json:"filterable"`
	Match           string   `json:"match"`
	Parent          string   `json:"parent,omitempty"` // Parent dimension key in the hierarchy
	CardinalityHint string   `json:"cardinalityHint,omitempty"`
}

// DefaultDimension creates an exact-match DimensionMeta.
func DefaultDimension(key, displayName string, values []string) DimensionMeta {
	return DimensionMeta{
		Key:             key,
		DisplayName:     displayName,
		Values:          values,
		Filterable:      true,
		Match:           MatchExact,
		CardinalityHint: cardinalityHint(len(values)),
	}
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// Dimension looks up a dimension by key.
func (c Config) Dimension(key string) (DimensionMeta, bool) {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return DimensionMeta{}, false
}

// Values returns the option vocabulary of a dimension, or nil.
func (c Config) Values(key string) []string {
	d, _ := c.Dimension(key)
	return d.Values
}

func cardinalityHint(n int) string {
	switch {
	case n <= 10:
		return "low"
	case n <= 100:
		return "medium"
	default:
		return "high"
	}
}
