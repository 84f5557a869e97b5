package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ValidateInputFile checks that filename names a readable regular file.
// A missing file yields an error wrapping fs.ErrNotExist.
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case err != nil:
		return fmt.Errorf("cannot access %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("%s is a directory, not a file", filename)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%s is not a regular file", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", filename, err)
	}
	return f.Close()
}

// ValidateOutputFile checks if the output file path is valid
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		// Check if directory exists or can be created
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(ext)
}

// IsStructuredFile reports whether filename holds JSON or YAML data.
func IsStructuredFile(filename string) bool {
	switch GetFileExtension(filename) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// IsYAMLFile reports whether filename has a YAML extension.
func IsYAMLFile(filename string) bool {
	ext := GetFileExtension(filename)
	return ext == ".yaml" || ext == ".yml"
}

// IsDocumentFile reports whether filename is a resume document whose text
// must be extracted and parsed.
func IsDocumentFile(filename string) bool {
	return slices.Contains([]string{".pdf", ".docx", ".txt", ".md"}, GetFileExtension(filename))
}

// CheckFileSize fails when the file is larger than maxSize bytes.
// A maxSize of zero or less disables the check.
func CheckFileSize(filename string, maxSize int64) error {
	if maxSize <= 0 {
		return nil
	}
	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}
	if info.Size() > maxSize {
		return fmt.Errorf("file %s is %s, larger than the %s limit",
			filename, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}
	return nil
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
