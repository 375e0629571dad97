package features

import "maps"

// Option applies a configuration option to the Aligner.
type Option func(*Aligner)

// WithRename maps external request field names to training-time names.
func WithRename(table map[string]string) Option {
	return func(a *Aligner) {
		a.rename = maps.Clone(table)
	}
}

// WithCategorical declares the fields expanded into one-hot indicators.
func WithCategorical(fields ...string) Option {
	return func(a *Aligner) {
		a.categorical = append([]string(nil), fields...)
	}
}
