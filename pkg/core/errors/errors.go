package errors

import "errors"

// Probe-related errors
var (
	ErrProbeUnavailable  = errors.New("probe: no technical probe tool found (mediainfo or ffprobe)")
	ErrUnsupportedFormat = errors.New("probe: output has no recognizable general/track structure")
)

// Catalog-related errors
var (
	ErrCatalogNotFound    = errors.New("catalog: resource not found")
	ErrCatalogRateLimited = errors.New("catalog: rate limit exceeded")
	ErrCatalogAuth        = errors.New("catalog: unauthorized (invalid API key or token)")
	ErrCatalogUnavailable = errors.New("catalog: service unavailable or internal server error")
)
