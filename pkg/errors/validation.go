package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// Sprite dimension and palette size limits.
const (
	MinDimension = 8
	MaxDimension = 512
	MaxPalette   = 256
)

// paletteNameRegex matches palette names such as "knight-steel" or "skin_2".
var paletteNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidatePaletteName validates a stored palette name. Names are lowercase,
// at most 64 characters, and safe to use as file names and storage keys.
func ValidatePaletteName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPalette, "palette name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidPalette, "palette name too long (max 64 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPalette, "palette name contains invalid characters: %q", "..")
	}
	if !paletteNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPalette, "invalid palette name: %q", name)
	}
	return nil
}

// styleIDRegex matches the canonical UUID text form.
var styleIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateStyleID validates a stored style identifier.
func ValidateStyleID(id string) error {
	if !styleIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid style id: %q", id)
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateDimensions checks a requested sprite size.
func ValidateDimensions(width, height int) error {
	if width < MinDimension || height < MinDimension {
		return New(ErrCodeInvalidInput, "sprite size %dx%d too small (min %d)", width, height, MinDimension)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidInput, "sprite size %dx%d too large (max %d)", width, height, MaxDimension)
	}
	return nil
}

// ValidateMaxColors checks a requested palette size.
func ValidateMaxColors(n int) error {
	if n < 1 || n > MaxPalette {
		return New(ErrCodeInvalidInput, "max colors %d out of range (1-%d)", n, MaxPalette)
	}
	return nil
}
