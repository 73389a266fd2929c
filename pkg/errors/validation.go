package errors

import (
	"strings"
	"unicode"
)

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateFilename validates an explicit cache filename.
// It must be a plain basename: no separators, no traversal, no control
// characters and no leading dot (hidden and temporary files are reserved).
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeArgument, "filename cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeArgument, "filename too long (max 255 bytes)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeArgument, "filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeArgument, "filename cannot contain path separators")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeArgument, "filename cannot start with a dot")
	}

	return nil
}

// ValidateSize validates image dimensions.
func ValidateSize(w, h int) error {
	if w < 0 || h < 0 {
		return New(ErrCodeArgument, "invalid size %dx%d", w, h)
	}
	return nil
}
