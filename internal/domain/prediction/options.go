package prediction

import "github.com/okian/medalcast/pkg/logger"

type options struct {
	version    string
	logger     logger.Logger
	classifier Classifier
	regressor  Regressor
}

// Option applies a configuration option to a predictor.
type Option func(*options)

// WithModelVersion sets the version reported when the bundle carries none.
func WithModelVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.version = v
		}
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClassifier replaces the bundle's ensemble as the athlete scorer.
func WithClassifier(c Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithRegressor replaces the bundle's ensemble as the country scorer.
func WithRegressor(r Regressor) Option {
	return func(o *options) {
		if r != nil {
			o.regressor = r
		}
	}
}
