package decoder

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const resumeSchemaJSON = `{
  "type": "object",
  "properties": {
    "full_name":    {"type": ["string", "null"]},
    "phone_number": {"type": ["string", "number", "null"]},
    "location":     {"type": ["string", "null"]},
    "socials":      {"type": ["object", "null"], "additionalProperties": {"type": ["string", "null"]}},
    "profile":      {"type": ["string", "null"]},
    "skills":       {"type": ["array", "null"], "items": {"type": "string"}},
    "education":    {"type": ["array", "null"], "items": {"type": "object"}},
    "experience":   {"type": ["array", "null"], "items": {"type": "object"}},
    "projects":     {"type": ["array", "object", "null"]},
    "hobbies":      {"type": ["array", "null"], "items": {"type": "string"}},
    "languages":    {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

const jobSchemaJSON = `{
  "type": "object",
  "properties": {
    "job_poster":      {"type": ["string", "null"]},
    "job_title":       {"type": ["string", "null"]},
    "required_skills": {"type": ["array", "null"], "items": {"type": "string"}},
    "tasks":           {"type": ["array", "null"], "items": {"type": "string"}},
    "profile":         {"type": ["string", "null"]}
  }
}`

var (
	resumeSchema = mustSchema(resumeSchemaJSON)
	jobSchema    = mustSchema(jobSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return schema
}

// schemaIssues validates the decoded payload and returns one issue per violation.
// Violations never fail decoding.
func schemaIssues(schema *gojsonschema.Schema, payload string) []string {
	result, err := schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return []string{fmt.Sprintf("schema check skipped: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, fmt.Sprintf("schema: %s: %s", desc.Field(), desc.Description()))
	}
	return issues
}
