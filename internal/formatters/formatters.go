package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumeforge/internal/types"

	"gopkg.in/yaml.v3"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// Data type keys used for registration.
const (
	TypeAny    = "any"
	TypeResume = "CandidateResume"
	TypeJob    = "JobRequirement"
	TypeTailor = "TailorResult"
	TypeRuns   = "RunHistory"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("yaml", TypeAny, &YAMLFormatter{})
	registry.RegisterFormatter("text", TypeResume, &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", TypeResume, &ResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeJob, &JobTextFormatter{})
	registry.RegisterFormatter("markdown", TypeJob, &JobMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeTailor, &TailorTextFormatter{})
	registry.RegisterFormatter("markdown", TypeTailor, &TailorMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeRuns, &RunsTextFormatter{})
	registry.RegisterFormatter("markdown", TypeRuns, &RunsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.CandidateResume, *types.CandidateResume:
		return TypeResume
	case types.JobRequirement, *types.JobRequirement:
		return TypeJob
	case types.TailorResult, *types.TailorResult:
		return TypeTailor
	case []types.RunRecord:
		return TypeRuns
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// YAMLFormatter handles YAML formatting for any data type
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return TypeAny
}

func asResume(data any) (types.CandidateResume, error) {
	switch v := data.(type) {
	case types.CandidateResume:
		return v, nil
	case *types.CandidateResume:
		if v != nil {
			return *v, nil
		}
	}
	return types.CandidateResume{}, fmt.Errorf("expected CandidateResume, got %T", data)
}

func asJob(data any) (types.JobRequirement, error) {
	switch v := data.(type) {
	case types.JobRequirement:
		return v, nil
	case *types.JobRequirement:
		if v != nil {
			return *v, nil
		}
	}
	return types.JobRequirement{}, fmt.Errorf("expected JobRequirement, got %T", data)
}

func asTailor(data any) (types.TailorResult, error) {
	switch v := data.(type) {
	case types.TailorResult:
		return v, nil
	case *types.TailorResult:
		if v != nil {
			return *v, nil
		}
	}
	return types.TailorResult{}, fmt.Errorf("expected TailorResult, got %T", data)
}
