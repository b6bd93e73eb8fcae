package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxItems bounds the number of items accepted by a single layout request.
const MaxItems = 100_000

// ValidateWidth checks that a pixel width is finite and strictly positive.
func ValidateWidth(name string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidOptions, "%s must be a finite number", name)
	}
	if w <= 0 {
		return New(ErrCodeInvalidOptions, "%s must be positive, got %v", name, w)
	}
	return nil
}

// ValidateNonNegative checks that a pixel value is finite and not negative.
// Container widths may legitimately be zero (hidden containers).
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidOptions, "%s must be a finite number", name)
	}
	if v < 0 {
		return New(ErrCodeInvalidOptions, "%s cannot be negative, got %v", name, v)
	}
	return nil
}

// ValidateItemCount rejects oversized item lists.
func ValidateItemCount(n int) error {
	if n > MaxItems {
		return New(ErrCodeInvalidInput, "too many items (max %d, got %d)", MaxItems, n)
	}
	return nil
}

// ValidatePath validates an output path given on the command line or in a
// config file. It rejects empty paths, control characters and null bytes.
//
// Unlike repository paths, absolute paths are accepted: output files commonly
// live outside the working directory.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
