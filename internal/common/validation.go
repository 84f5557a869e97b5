package common

import (
	"fmt"
	"slices"
	"strings"

	"resumeforge/internal/errors"
	"resumeforge/internal/formatters"
)

// GetSupportedFormats returns the configured output formats that have a
// formatter. An empty configuration allows every registered formatter.
func GetSupportedFormats(configured []string) []string {
	registered := formatters.NewFormatterRegistry().GetSupportedFormats()
	if len(configured) == 0 {
		return registered
	}
	var formats []string
	for _, f := range configured {
		if slices.Contains(registered, f) && !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	return formats
}

// ValidateOutputFormat checks format against GetSupportedFormats(configured).
func ValidateOutputFormat(format string, configured []string) error {
	supported := GetSupportedFormats(configured)
	if slices.Contains(supported, format) {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s' (supported: %s)", format, strings.Join(supported, ", ")), nil)
}
