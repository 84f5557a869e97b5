// Package decoder turns free-form model replies into resume and job records.
package decoder

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Kind classifies decode failures.
type Kind int

const (
	NoPayload Kind = iota
	Malformed
)

func (k Kind) String() string {
	if k == NoPayload {
		return "no_payload"
	}
	return "malformed"
}

// DecodeError reports a reply that carried no usable JSON.
// It matches errors.ErrNoPayload or errors.ErrMalformedJSON and exposes an
// AppError with the matching code through the error chain.
type DecodeError struct {
	Kind  Kind
	Raw   string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Kind == NoPayload {
		return errors.ErrNoPayload.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", errors.ErrMalformedJSON.Error(), e.Cause)
	}
	return errors.ErrMalformedJSON.Error()
}

// Is matches the decode sentinels.
func (e *DecodeError) Is(target error) bool {
	switch target {
	case errors.ErrNoPayload:
		return e.Kind == NoPayload
	case errors.ErrMalformedJSON:
		return e.Kind == Malformed
	}
	return false
}

// Unwrap exposes the AppError form and the parse cause.
func (e *DecodeError) Unwrap() []error {
	code := errors.ErrCodeMalformedJSON
	if e.Kind == NoPayload {
		code = errors.ErrCodeNoPayload
	}
	appErr := errors.NewValidationError(code, e.Error(), nil)
	if e.Cause == nil {
		return []error{appErr}
	}
	return []error{appErr, e.Cause}
}

// Decoder extracts JSON from model replies and normalizes it.
// It holds no mutable state and is safe for concurrent use.
type Decoder struct {
	extractor Extractor
}

// New returns a Decoder using extractor; nil selects BraceSpan.
func New(extractor Extractor) *Decoder {
	if extractor == nil {
		extractor = BraceSpan{}
	}
	return &Decoder{extractor: extractor}
}

var resumeFields = []string{
	"full_name", "phone_number", "location", "socials", "profile", "skills",
	"education", "experience", "projects", "hobbies", "languages",
}

var jobFields = []string{"job_poster", "job_title", "required_skills", "tasks", "profile"}

// Decode maps raw onto a CandidateResume. When no payload can be found,
// previous is returned unchanged together with the error. issues lists
// non-fatal findings such as defaulted fields and schema violations.
func (d *Decoder) Decode(raw string, previous *types.CandidateResume) (*types.CandidateResume, []string, error) {
	obj, payload, err := d.object(raw)
	if err != nil {
		return previous, nil, err
	}

	issues := schemaIssues(resumeSchema, payload)
	issues = append(issues, missingFields(obj, resumeFields)...)

	resume := &types.CandidateResume{
		FullName:   stringValue(obj["full_name"]),
		Location:   stringValue(obj["location"]),
		Socials:    stringMap(obj["socials"]),
		Profile:    stringValue(obj["profile"]),
		Skills:     stringList(obj["skills"]),
		Education:  entryList(obj["education"], "details"),
		Experience: entryList(obj["experience"], "details"),
		Projects:   projectList(obj["projects"]),
		Hobbies:    stringList(obj["hobbies"]),
		Languages:  stringList(obj["languages"]),
	}

	phone, phoneIssue := normalizePhone(obj["phone_number"])
	resume.PhoneNumber = phone
	if phoneIssue != "" {
		issues = append(issues, phoneIssue)
	}

	return resume, issues, nil
}

// DecodeJob maps raw onto a JobRequirement.
func (d *Decoder) DecodeJob(raw string) (types.JobRequirement, []string, error) {
	obj, payload, err := d.object(raw)
	if err != nil {
		return types.JobRequirement{}, nil, err
	}

	issues := schemaIssues(jobSchema, payload)
	issues = append(issues, missingFields(obj, jobFields)...)

	return types.JobRequirement{
		JobPoster:      stringValue(obj["job_poster"]),
		JobTitle:       stringValue(obj["job_title"]),
		RequiredSkills: stringList(obj["required_skills"]),
		Tasks:          stringList(obj["tasks"]),
		Profile:        stringValue(obj["profile"]),
	}, issues, nil
}

func (d *Decoder) object(raw string) (map[string]any, string, error) {
	payload, ok := d.extractor.Extract(raw)
	if !ok {
		return nil, "", &DecodeError{Kind: NoPayload, Raw: raw}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, "", &DecodeError{Kind: Malformed, Raw: raw, Cause: err}
	}
	if obj == nil {
		return nil, "", &DecodeError{Kind: Malformed, Raw: raw, Cause: stderrors.New("payload is null")}
	}
	return obj, payload, nil
}

func missingFields(obj map[string]any, fields []string) []string {
	var issues []string
	for _, field := range fields {
		if _, ok := obj[field]; !ok {
			issues = append(issues, "field defaulted: "+field)
		}
	}
	return issues
}

// normalizePhone keeps the digits of a string phone and parses them.
// Numbers are accepted as they are. Anything else leaves the phone absent.
func normalizePhone(v any) (*int64, string) {
	switch val := v.(type) {
	case nil:
		return nil, ""
	case string:
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) && r < unicode.MaxASCII {
				return r
			}
			return -1
		}, val)
		if digits == "" {
			return nil, ""
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, "phone_number out of range: " + val
		}
		return &n, ""
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return &n, ""
		}
		f, err := val.Float64()
		if err != nil || f > math.MaxInt64 || f < math.MinInt64 {
			return nil, "phone_number out of range: " + val.String()
		}
		n := int64(f)
		return &n, ""
	default:
		return nil, fmt.Sprintf("phone_number ignored: unexpected %T", v)
	}
}

// stringValue coerces a scalar to text. null becomes "".
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func stringList(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := strings.TrimSpace(stringValue(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringMap(v any) map[string]string {
	out := map[string]string{}
	if m, ok := v.(map[string]any); ok {
		for k, item := range m {
			out[k] = stringValue(item)
		}
	}
	return out
}

// entryList coerces a list of objects to string maps. A bare string entry
// is stored under fallbackKey.
func entryList(v any, fallbackKey string) []map[string]string {
	out := []map[string]string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		switch entry := item.(type) {
		case map[string]any:
			out = append(out, stringMap(entry))
		case nil:
		default:
			out = append(out, map[string]string{fallbackKey: stringValue(entry)})
		}
	}
	return out
}

// projectList accepts both a list of entries and a single name to description object.
func projectList(v any) []map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return entryList(v, "name")
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]map[string]string, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]string{name: stringValue(m[name])})
	}
	return out
}
