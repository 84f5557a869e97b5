// Package extract pulls plain text out of resume documents.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appErrors "resumeforge/internal/errors"

	"github.com/ledongthuc/pdf"
)

// SupportedExtensions lists the file types Text understands.
var SupportedExtensions = []string{".pdf", ".docx", ".txt", ".md"}

// Text reads the file at path and returns its text.
func Text(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", appErrors.NewIOError(appErrors.ErrCodeFileNotFound,
				fmt.Sprintf("resume file not found: %s", path), err)
		}
		return "", appErrors.NewIOError(appErrors.ErrCodeFileNotReadable,
			fmt.Sprintf("cannot read resume file: %s", path), err)
	}
	return FromBytes(data, filepath.Base(path))
}

// FromBytes extracts text from an in-memory document. The extension of
// fileName selects the format.
func FromBytes(data []byte, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt", ".md", "":
		text = string(data)
	default:
		return "", appErrors.NewValidationError(appErrors.ErrCodeUnsupportedFile,
			fmt.Sprintf("unsupported resume format %q (supported: %s)", ext, strings.Join(SupportedExtensions, ", ")), nil)
	}
	if err != nil {
		return "", appErrors.NewIOError(appErrors.ErrCodeFileNotReadable,
			fmt.Sprintf("failed to extract text from %s", fileName), err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", appErrors.NewValidationError(appErrors.ErrCodeInvalidFormat,
			fmt.Sprintf("no text found in %s", fileName), nil)
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	return docxText(rc)
}

// docxText concatenates the character data of a WordprocessingML body,
// ending a line at each paragraph and break.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String(), nil
}
