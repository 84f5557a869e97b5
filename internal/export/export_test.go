package export

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() types.CandidateResume {
	phone := int64(15550102030)
	return types.CandidateResume{
		FullName:    "Ada King Lovelace",
		PhoneNumber: &phone,
		Location:    "London",
		Socials:     map[string]string{"github": "https://github.com/ada"},
		Profile:     "Analyst & mathematician",
		Skills:      []string{"Mathematics", "Programming"},
		Education:   []map[string]string{{"degree/certification": "Private tutoring", "details": "Mathematics"}},
		Experience:  []map[string]string{{"company": "Analytical Engine", "role and details": "Wrote the first program"}},
		Projects:    []map[string]string{{"Note G": "Bernoulli numbers"}},
		Languages:   []string{"English", "French"},
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		ext      string
		expected string
		wantErr  bool
	}{
		{name: "spaces become underscores", fullName: "Ada King Lovelace", ext: "pdf", expected: "Ada_King_Lovelace_resume.pdf"},
		{name: "repeated spaces collapse", fullName: "  Grace   Hopper ", ext: "docx", expected: "Grace_Hopper_resume.docx"},
		{name: "path separators", fullName: "A/B", ext: "pdf", expected: "A_B_resume.pdf"},
		{name: "missing name", fullName: "", ext: "pdf", wantErr: true},
		{name: "blank name", fullName: "   ", ext: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filename(types.CandidateResume{FullName: tt.fullName}, tt.ext)
			if tt.wantErr {
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderDOCX(t *testing.T) {
	data, err := Render(sampleResume(), FormatDOCX)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := map[string]*zip.File{}
	for _, f := range reader.File {
		names[f.Name] = f
	}
	for _, part := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		assert.Contains(t, names, part)
	}

	rc, err := names["word/document.xml"].Open()
	require.NoError(t, err)
	defer rc.Close()
	doc, err := io.ReadAll(rc)
	require.NoError(t, err)

	text := string(doc)
	assert.Contains(t, text, "Resume - Ada King Lovelace")
	assert.Contains(t, text, "Analyst &amp; mathematician")
	assert.Contains(t, text, "Phone: 15550102030")
	assert.Contains(t, text, "Analytical Engine: Wrote the first program")
	assert.Contains(t, text, "Note G: Bernoulli numbers")
	assert.NotContains(t, text, ">Hobbies<")
}

func TestRenderPDF(t *testing.T) {
	data, err := Render(sampleResume(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.True(t, bytes.Contains(data, []byte("%%EOF")))
}

func TestRenderPDFPaginates(t *testing.T) {
	r := sampleResume()
	for range 120 {
		r.Experience = append(r.Experience, map[string]string{"company": "Company", "role and details": "A long line of details about the role"})
	}
	short, err := Render(sampleResume(), FormatPDF)
	require.NoError(t, err)
	long, err := Render(r, FormatPDF)
	require.NoError(t, err)

	assert.Greater(t, bytes.Count(long, []byte("/Type /Page\n")), bytes.Count(short, []byte("/Type /Page\n")))
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(sampleResume(), "odt")
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.Code(err))
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := Save(dir, sampleResume(), "DOCX")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Ada_King_Lovelace_resume.docx"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = Save(dir, types.CandidateResume{}, FormatPDF)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.Code(err))

	_, err = Render(types.CandidateResume{FullName: " \t"}, FormatDOCX)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.Code(err))
}

func TestOutlineSkipsEmptySections(t *testing.T) {
	sections := outline(types.CandidateResume{FullName: "X", Skills: []string{"Go"}})
	require.Len(t, sections, 1)
	assert.Equal(t, "Skills", sections[0].Title)
	assert.Equal(t, []string{"Go"}, sections[0].Lines)
}
