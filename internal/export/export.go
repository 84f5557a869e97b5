// Package export writes a resume out as a PDF or Word document.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/go-playground/validator/v10"
)

// Supported export formats.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var validate = validator.New()

// Filename returns "Full_Name_resume.<ext>" for r.
func Filename(r types.CandidateResume, ext string) (string, error) {
	if err := checkResume(r); err != nil {
		return "", err
	}
	name := strings.Join(strings.Fields(r.FullName), "_")
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return fmt.Sprintf("%s_resume.%s", name, ext), nil
}

// Render returns the document bytes for r in the given format.
func Render(r types.CandidateResume, format string) ([]byte, error) {
	if err := checkResume(r); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case FormatPDF:
		data, err = renderPDF(r)
	case FormatDOCX:
		data, err = renderDOCX(r)
	default:
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported export format %q (supported: pdf, docx)", format), nil)
	}
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeExportFailed,
			fmt.Sprintf("failed to render %s", format), err)
	}
	return data, nil
}

// Save renders r into dir and returns the path of the written file.
func Save(dir string, r types.CandidateResume, format string) (string, error) {
	format = strings.ToLower(format)
	data, err := Render(r, format)
	if err != nil {
		return "", err
	}
	name, err := Filename(r, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.NewIOError(errors.ErrCodeExportFailed,
			fmt.Sprintf("failed to create output directory %s", dir), err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.NewIOError(errors.ErrCodeExportFailed,
			fmt.Sprintf("failed to write %s", path), err)
	}
	return path, nil
}

// checkResume enforces the export precondition. Tailoring accepts resumes
// without a name; only rendering needs one.
func checkResume(r types.CandidateResume) error {
	if err := validate.Var(strings.TrimSpace(r.FullName), "required"); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"resume must have a full_name to be exported", err)
	}
	return nil
}
