package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parserFunc func(ctx context.Context, text string) (types.CandidateResume, error)

func (f parserFunc) ParseResume(ctx context.Context, text string) (types.CandidateResume, error) {
	return f(ctx, text)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadResume(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(errors.NewDiscardLogger(), 0)

	var parsedText string
	parser := parserFunc(func(_ context.Context, text string) (types.CandidateResume, error) {
		parsedText = text
		return types.CandidateResume{FullName: "From Text"}, nil
	})

	tests := []struct {
		name     string
		file     string
		content  string
		wantName string
		wantCode string
	}{
		{
			name:     "json",
			file:     "resume.json",
			content:  `{"full_name":"Ada Lovelace","skills":["Go"]}`,
			wantName: "Ada Lovelace",
		},
		{
			name:     "yaml",
			file:     "resume.yaml",
			content:  "full_name: Grace Hopper\nskills:\n  - COBOL\n",
			wantName: "Grace Hopper",
		},
		{
			name:     "text document is parsed",
			file:     "resume.txt",
			content:  "Ada Lovelace\nEngineer",
			wantName: "From Text",
		},
		{
			name:     "missing full name is accepted",
			file:     "nameless.json",
			content:  `{"skills":["Go"]}`,
			wantName: "",
		},
		{
			name:     "unknown field",
			file:     "extra.json",
			content:  `{"full_name":"Ada","salary":1}`,
			wantCode: errors.ErrCodeInvalidFormat,
		},
		{
			name:     "unsupported extension",
			file:     "resume.odt",
			content:  "binary",
			wantCode: errors.ErrCodeUnsupportedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			resume, err := fp.LoadResume(context.Background(), path, parser)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errors.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, resume.FullName)
		})
	}

	assert.Equal(t, "Ada Lovelace\nEngineer", parsedText)
}

func TestLoadResumeMissingFile(t *testing.T) {
	fp := NewFileProcessor(nil, 0)
	_, err := fp.LoadResume(context.Background(), filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.Code(err))
}

func TestLoadResumeDocumentNeedsParser(t *testing.T) {
	path := writeFile(t, t.TempDir(), "resume.md", "# Ada")
	_, err := NewFileProcessor(nil, 0).LoadResume(context.Background(), path, nil)
	assert.Equal(t, errors.ErrCodeUnsupportedFile, errors.Code(err))
}

func TestLoadJobRequest(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(nil, 0)

	structured := writeFile(t, dir, "job.json", `{"job_title":"SRE","required_skills":["Go"]}`)
	req, err := fp.LoadJobRequest(structured)
	require.NoError(t, err)
	require.NotNil(t, req.JobDescription)
	assert.Equal(t, "SRE", req.JobDescription.JobTitle)
	assert.Empty(t, req.JobText)

	text := writeFile(t, dir, "job.txt", "  We are hiring an SRE.  ")
	req, err = fp.LoadJobRequest(text)
	require.NoError(t, err)
	assert.Nil(t, req.JobDescription)
	assert.Equal(t, "We are hiring an SRE.", req.JobText)

	empty := writeFile(t, dir, "empty.yaml", "job_title: \"\"\n")
	_, err = fp.LoadJobRequest(empty)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.Code(err))
}

func TestFileSizeLimit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "resume.json", `{"full_name":"Ada Lovelace"}`)
	_, err := NewFileProcessor(nil, 8).ReadFile(path)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.Code(err))
}

func TestOutputHandler(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandler(nil).WithWriter(&buf)

	require.NoError(t, oh.HandleOutput(types.JobRequirement{JobTitle: "SRE"}, CommandConfig{OutputFormat: "json"}))
	assert.Contains(t, buf.String(), `"job_title": "SRE"`)

	out := filepath.Join(t.TempDir(), "nested", "job.yaml")
	require.NoError(t, oh.HandleOutput(types.JobRequirement{JobTitle: "SRE"}, CommandConfig{OutputFormat: "yaml", OutputFile: out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "job_title: SRE")

	err = oh.HandleOutput(types.JobRequirement{}, CommandConfig{OutputFormat: "xml"})
	assert.Equal(t, errors.ErrCodeInvalidFormat, errors.Code(err))
}
