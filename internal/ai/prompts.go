package ai

import (
	"fmt"
	"strings"
	"text/template"

	"resumeforge/internal/config"
)

// PromptData is the input to every user prompt template.
// JSON fields hold pre-rendered JSON documents.
type PromptData struct {
	BaseResume       string
	JobDescription   string
	Resume           string
	ValidationErrors []string
	RevisionSteps    []string
	Chunk            string
	Text             string
	Schema           string
}

// ResumeJSONShape describes the reply shape expected from generate, correct and parseResume.
const ResumeJSONShape = `{
  "full_name": "string",
  "phone_number": "string or number",
  "location": "string",
  "socials": {"platform": "url"},
  "profile": "string",
  "skills": ["skill1", "skill2"],
  "education": [{"degree/certification": "string", "details": "string"}],
  "experience": [{"company": "string", "role and details": "string"}],
  "projects": [{"name": "description"}],
  "hobbies": ["string"],
  "languages": ["string"]
}`

// JobJSONShape describes the reply shape expected from parseJob.
const JobJSONShape = `{
  "job_poster": "string (company name)",
  "job_title": "string",
  "required_skills": ["skill1", "skill2"],
  "tasks": ["task1", "task2"],
  "profile": "string profile required for the job"
}`

// NoIssuesMarker is the reply analyze gives when the resume needs no revision.
const NoIssuesMarker = "NO_ISSUES"

// DefaultSystemPrompts provides the default system instructions per operation
var DefaultSystemPrompts = map[string]string{
	config.OperationGenerate: `You are an expert resume writer with a strict commitment to honesty and accuracy.

- NEVER invent, exaggerate, or misattribute any skills or experiences
- Every piece of information must be directly traceable to the base resume
- Reply with a single JSON object and nothing else`,

	config.OperationAnalyze: `You are an ATS (Applicant Tracking System) specialist and recruiter.
You compare a resume against job requirements and list concrete, actionable revisions.`,

	config.OperationCorrect: `You are an expert resume editor. You fix the issues you are given without inventing
new facts, and you reply with a single JSON object and nothing else.`,

	config.OperationParseJob: `You are an expert job description parser. You extract structured fields from
job posting text and reply with a single JSON object and nothing else.`,

	config.OperationParseResume: `You are an expert resume parser. You extract structured fields from resume text
exactly as written and reply with a single JSON object and nothing else.`,
}

// DefaultUserPrompts provides the default user prompt templates per operation
var DefaultUserPrompts = map[string]string{
	config.OperationGenerate: `Generate an initial ATS-optimized resume based on:

Base Resume: {{.BaseResume}}

Job Description: {{.JobDescription}}

Requirements:
- Use standard ATS headers: Summary, Experience, Skills, Education
- Mirror job description keywords
- Quantify achievements
- Use active verbs
- Do NOT add any skills not present in the original resume
- Preserve the original resume's structure and personal details

Provide a JSON-formatted resume with exactly these keys:
{{.Schema}}`,

	config.OperationAnalyze: `Analyze alignment between the generated resume and the job requirements:

Resume: {{.Resume}}

Job Description: {{.JobDescription}}

Identify:
1. Missing required skills
2. Under-quantified experiences
3. Keyword mismatches
4. Section priority issues

If there is nothing to revise, reply with exactly ` + NoIssuesMarker + `.`,

	config.OperationCorrect: `Correct the resume based on these issues:
{{range .ValidationErrors}}- {{.}}
{{end}}{{range .RevisionSteps}}{{.}}
{{end}}
Current resume:
{{.Resume}}

Maintain:
- Original factual accuracy
- ATS-friendly format
- Job keyword alignment

Provide the corrected resume as JSON with exactly these keys:
{{.Schema}}`,

	config.OperationParseJob: `Extract details from this job description chunk:

Chunk:
{{.Chunk}}

IMPORTANT: If you find relevant information, fill in the JSON.
If a field is not in this chunk, leave it empty.

Provide the output as JSON with these keys:
{{.Schema}}`,

	config.OperationParseResume: `Extract the candidate's details from this resume text:

-----
{{.Text}}
-----

Do not invent values. Leave fields you cannot find empty.

Provide the output as JSON with these keys:
{{.Schema}}`,
}

// BuildPrompt renders a user prompt template.
func BuildPrompt(tmpl string, data PromptData) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return sb.String(), nil
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file or defined directly in the configuration.
// 2. A hardcoded default prompt.
func resolvePrompt(configured, fromDefault string) string {
	if configured != "" {
		return configured
	}
	return fromDefault
}
