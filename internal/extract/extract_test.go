package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	appErrors "resumeforge/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFromBytesDOCX(t *testing.T) {
	data := buildDOCX(t, `<w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go</w:t></w:r></w:p>`)

	text, err := FromBytes(data, "resume.DOCX")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace\nSkills:\tGo", text)
}

func TestFromBytesPlainText(t *testing.T) {
	text, err := FromBytes([]byte("  # Ada\nGo developer \n"), "resume.md")
	require.NoError(t, err)
	assert.Equal(t, "# Ada\nGo developer", text)
}

func TestFromBytesErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		file     string
		wantCode string
	}{
		{"unsupported extension", []byte("x"), "resume.odt", appErrors.ErrCodeUnsupportedFile},
		{"blank text", []byte(" \n "), "resume.txt", appErrors.ErrCodeInvalidFormat},
		{"broken docx", []byte("not a zip"), "resume.docx", appErrors.ErrCodeFileNotReadable},
		{"broken pdf", []byte("not a pdf"), "resume.pdf", appErrors.ErrCodeFileNotReadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromBytes(tt.data, tt.file)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, appErrors.Code(err))
		})
	}
}

func TestText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Ada Lovelace"), 0600))

	text, err := Text(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", text)

	_, err = Text(filepath.Join(dir, "missing.pdf"))
	assert.Equal(t, appErrors.ErrCodeFileNotFound, appErrors.Code(err))
}
