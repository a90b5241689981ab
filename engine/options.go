package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Derive()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Scale     OrdinalScale
	Delimiter string // separator inside the tech_categories cell
	WrapWidth int    // hierarchy label wrap width in runes (0 = off)
	LineBreak string // inserted between wrapped lines
	TickLen   int    // category tick truncation in runes (0 = off)
}

// WithOrdinalScale sets the impact/innovation label mapping.
func WithOrdinalScale(s OrdinalScale) Option {
	return func(c *config) {
		if !s.IsZero() {
			c.Scale = s
		}
	}
}

// WithDelimiter sets the category separator.
func WithDelimiter(d string) Option {
	return func(c *config) {
		if d != "" {
			c.Delimiter = d
		}
	}
}

// WithLabelWrap wraps hierarchy labels at width runes joined by lineBreak.
func WithLabelWrap(width int, lineBreak string) Option {
	return func(c *config) {
		c.WrapWidth = width
		if lineBreak != "" {
			c.LineBreak = lineBreak
		}
	}
}

// WithTickLength truncates category tick labels to n runes.
func WithTickLength(n int) Option {
	return func(c *config) {
		c.TickLen = n
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Scale:     DefaultOrdinalScale(),
		Delimiter: DefaultDelimiter,
		WrapWidth: 20,
		LineBreak: "\n",
		TickLen:   25,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Scale returns the ordinal scale the options resolve to.
func Scale(opts ...Option) OrdinalScale {
	return applyOptions(opts).Scale
}
