package sanitizer

import "errors"

var (
	// ErrInvalidInput is returned when a sanitization function receives a
	// non-textual value where text is required.
	ErrInvalidInput = errors.New("sanitizer: input is not a string")

	// ErrMaxDepthExceeded is returned by SanitizeObject when the input
	// structure nests deeper than the configured traversal bound.
	ErrMaxDepthExceeded = errors.New("sanitizer: maximum traversal depth exceeded")
)
