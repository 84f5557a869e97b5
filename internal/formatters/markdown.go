package formatters

import (
	"fmt"
	"strings"

	"resumeforge/internal/types"
)

// ResumeMarkdownFormatter renders a resume as markdown
type ResumeMarkdownFormatter struct{}

func (f *ResumeMarkdownFormatter) Format(data any) (string, error) {
	r, err := asResume(data)
	if err != nil {
		return "", err
	}
	var output strings.Builder
	writeResumeMarkdown(&output, r, "#")
	return output.String(), nil
}

func (f *ResumeMarkdownFormatter) SupportedType() string { return TypeResume }

func writeResumeMarkdown(output *strings.Builder, r types.CandidateResume, level string) {
	output.WriteString(fmt.Sprintf("%s %s\n\n", level, r.FullName))

	if r.PhoneNumber != nil {
		output.WriteString(fmt.Sprintf("- **Phone:** %d\n", *r.PhoneNumber))
	}
	if r.Location != "" {
		output.WriteString(fmt.Sprintf("- **Location:** %s\n", r.Location))
	}
	for _, k := range sortedKeys(r.Socials) {
		output.WriteString(fmt.Sprintf("- **%s:** %s\n", k, r.Socials[k]))
	}

	sub := level + "#"
	markdownSection(output, sub, "Profile", r.Profile)
	markdownList(output, sub, "Skills", r.Skills)
	markdownList(output, sub, "Education", entries(r.Education))
	markdownList(output, sub, "Experience", entries(r.Experience))
	markdownList(output, sub, "Projects", entries(r.Projects))
	markdownSection(output, sub, "Languages", strings.Join(r.Languages, ", "))
	markdownSection(output, sub, "Hobbies", strings.Join(r.Hobbies, ", "))
}

func markdownSection(output *strings.Builder, level, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	output.WriteString(fmt.Sprintf("\n%s %s\n\n%s\n", level, title, body))
}

func markdownList(output *strings.Builder, level, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("\n%s %s\n\n", level, title))
	for _, item := range items {
		output.WriteString("- " + item + "\n")
	}
}

// JobMarkdownFormatter renders a parsed job posting as markdown
type JobMarkdownFormatter struct{}

func (f *JobMarkdownFormatter) Format(data any) (string, error) {
	job, err := asJob(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("# %s\n\n", orNA(job.JobTitle)))
	output.WriteString(fmt.Sprintf("**Company:** %s\n", orNA(job.JobPoster)))
	markdownSection(&output, "##", "Profile", job.Profile)
	markdownList(&output, "##", "Required Skills", job.RequiredSkills)
	markdownList(&output, "##", "Tasks", job.Tasks)
	return output.String(), nil
}

func (f *JobMarkdownFormatter) SupportedType() string { return TypeJob }

// TailorMarkdownFormatter handles markdown formatting for tailor results
type TailorMarkdownFormatter struct{}

func (f *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, err := asTailor(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("# Tailored Resume\n\n")
	writeResumeMarkdown(&output, result.Resume, "##")

	output.WriteString("\n## Workflow\n\n")
	output.WriteString("| Field | Value |\n|---|---|\n")
	if result.RunID != "" {
		output.WriteString(fmt.Sprintf("| Run | `%s` |\n", result.RunID))
	}
	output.WriteString(fmt.Sprintf("| Target | %s at %s |\n", orNA(result.JobDescription.JobTitle), orNA(result.JobDescription.JobPoster)))
	output.WriteString(fmt.Sprintf("| Iterations | %d |\n", result.Iterations))
	output.WriteString(fmt.Sprintf("| Stop reason | %s |\n", result.StopReason))
	markdownList(&output, "###", "Remaining Validation Errors", result.ValidationErrors)
	markdownList(&output, "###", "Open Revision Steps", result.RevisionSteps)

	return output.String(), nil
}

func (f *TailorMarkdownFormatter) SupportedType() string { return TypeTailor }

// RunsMarkdownFormatter lists run history as a markdown table
type RunsMarkdownFormatter struct{}

func (f *RunsMarkdownFormatter) Format(data any) (string, error) {
	runs, ok := data.([]types.RunRecord)
	if !ok {
		return "", fmt.Errorf("expected []RunRecord, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Run History\n\n")
	if len(runs) == 0 {
		output.WriteString("_No runs recorded._\n")
		return output.String(), nil
	}
	output.WriteString("| ID | Created | Iterations | Stop reason | Job |\n|---|---|---|---|---|\n")
	for _, run := range runs {
		status := run.StopReason
		if !run.Succeeded {
			status = "failed"
		}
		output.WriteString(fmt.Sprintf("| `%s` | %s | %d | %s | %s |\n",
			run.ID, run.CreatedAt, run.Iterations, status, jobLabel(run)))
	}
	return output.String(), nil
}

func (f *RunsMarkdownFormatter) SupportedType() string { return TypeRuns }
