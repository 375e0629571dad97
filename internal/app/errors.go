package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotReady   = errors.New("models not loaded")
	ErrLoadBundle = errors.New("load model bundle")
)
