package gbt

import "errors"

// Sentinel kinds for ensemble errors.
var (
	ErrInvalidModel   = errors.New("invalid tree ensemble")
	ErrUnknownFeature = errors.New("split on unknown feature")
	ErrFeatureCount   = errors.New("feature vector length mismatch")
	ErrNotClassifier  = errors.New("ensemble is not a binary classifier")
	ErrNotRegressor   = errors.New("ensemble is not a squared error regressor")
)
