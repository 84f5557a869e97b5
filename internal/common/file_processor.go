package common

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"resumeforge/internal/errors"
	"resumeforge/internal/extract"
	"resumeforge/internal/types"
	"resumeforge/internal/utils"

	"gopkg.in/yaml.v3"
)

// ResumeTextParser turns free resume text into a structured resume.
type ResumeTextParser interface {
	ParseResume(ctx context.Context, text string) (types.CandidateResume, error)
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
}

// NewFileProcessor creates a new file processor instance. Input files
// larger than maxSize bytes are rejected; zero disables the limit.
func NewFileProcessor(logger *errors.Logger, maxSize int64) *FileProcessor {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &FileProcessor{logger: logger, maxSize: maxSize}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewValidationError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Invalid file %s", filename), err)
	}
	if err := utils.CheckFileSize(filename, fp.maxSize); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("File too large: %s", filename), err)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	return content, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename string, content []byte) error {
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewIOError("DIRECTORY_CREATE_FAILED",
			fmt.Sprintf("Cannot create directory: %s", filepath.Dir(filename)), err)
	}

	if err := os.WriteFile(filename, content, 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// DecodeFile decodes a JSON or YAML file into v, chosen by extension.
func (fp *FileProcessor) DecodeFile(filename string, v any) error {
	if !utils.IsStructuredFile(filename) {
		return errors.NewValidationError(errors.ErrCodeUnsupportedFile,
			fmt.Sprintf("%s is not a JSON or YAML file", filename), nil)
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		return err
	}

	if utils.IsYAMLFile(filename) {
		err = yaml.Unmarshal(content, v)
	} else {
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	}
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Cannot decode %s", filename), err)
	}
	return nil
}

// LoadResume loads a base resume. JSON and YAML files are decoded directly;
// PDF, DOCX and text documents go through parser.
func (fp *FileProcessor) LoadResume(ctx context.Context, filename string, parser ResumeTextParser) (types.CandidateResume, error) {
	if utils.IsDocumentFile(filename) {
		if parser == nil {
			return types.CandidateResume{}, errors.NewValidationError(errors.ErrCodeUnsupportedFile,
				fmt.Sprintf("%s must be parsed but no resume parser is available", filename), nil)
		}
		content, err := fp.ReadFile(filename)
		if err != nil {
			return types.CandidateResume{}, err
		}
		text, err := extract.FromBytes(content, filepath.Base(filename))
		if err != nil {
			return types.CandidateResume{}, err
		}
		fp.logger.Info("Parsing resume document", "file", filename, "characters", len(text))
		return parser.ParseResume(ctx, text)
	}

	var resume types.CandidateResume
	if err := fp.DecodeFile(filename, &resume); err != nil {
		return types.CandidateResume{}, err
	}
	return resume, nil
}

// LoadJobRequest reads a job posting file. JSON and YAML files hold a
// structured job description; text files hold posting text to be parsed.
func (fp *FileProcessor) LoadJobRequest(filename string) (types.TailorRequest, error) {
	if utils.IsStructuredFile(filename) {
		var job types.JobRequirement
		if err := fp.DecodeFile(filename, &job); err != nil {
			return types.TailorRequest{}, err
		}
		if job.IsEmpty() {
			return types.TailorRequest{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Job description in %s is empty", filename), nil)
		}
		return types.TailorRequest{JobDescription: &job}, nil
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		return types.TailorRequest{}, err
	}
	text, err := extract.FromBytes(content, filepath.Base(filename))
	if err != nil {
		return types.TailorRequest{}, err
	}
	return types.TailorRequest{JobText: text}, nil
}
