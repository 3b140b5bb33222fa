package features

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithFastballPitches sets the pitch names that form a pitcher's baseline.
func WithFastballPitches(names []string) Option {
	return func(b *Builder) {
		if len(names) > 0 {
			b.fastball = toSet(names)
		}
	}
}

// WithExcludedPitches sets the pitch names dropped before scoring.
func WithExcludedPitches(names []string) Option {
	return func(b *Builder) {
		if names != nil {
			b.excluded = toSet(names)
		}
	}
}

// WithWhiffDescriptions sets the outcome descriptions counted as a whiff.
func WithWhiffDescriptions(desc []string) Option {
	return func(b *Builder) {
		if len(desc) > 0 {
			b.whiff = toSet(desc)
		}
	}
}

func toSet(names []string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}
