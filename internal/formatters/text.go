package formatters

import (
	"fmt"
	"sort"
	"strings"

	"resumeforge/internal/types"
)

// ResumeTextFormatter renders a resume as plain text
type ResumeTextFormatter struct{}

func (f *ResumeTextFormatter) Format(data any) (string, error) {
	r, err := asResume(data)
	if err != nil {
		return "", err
	}
	var output strings.Builder
	writeResumeText(&output, r)
	return output.String(), nil
}

func (f *ResumeTextFormatter) SupportedType() string { return TypeResume }

func writeResumeText(output *strings.Builder, r types.CandidateResume) {
	output.WriteString(strings.ToUpper(r.FullName))
	output.WriteString("\n")

	var contact []string
	if r.PhoneNumber != nil {
		contact = append(contact, fmt.Sprintf("%d", *r.PhoneNumber))
	}
	if r.Location != "" {
		contact = append(contact, r.Location)
	}
	for _, k := range sortedKeys(r.Socials) {
		contact = append(contact, r.Socials[k])
	}
	if len(contact) > 0 {
		output.WriteString(strings.Join(contact, " | "))
		output.WriteString("\n")
	}

	textSection(output, "PROFILE", r.Profile)
	textSection(output, "SKILLS", strings.Join(r.Skills, ", "))
	textList(output, "EDUCATION", entries(r.Education))
	textList(output, "EXPERIENCE", entries(r.Experience))
	textList(output, "PROJECTS", entries(r.Projects))
	textSection(output, "LANGUAGES", strings.Join(r.Languages, ", "))
	textSection(output, "HOBBIES", strings.Join(r.Hobbies, ", "))
}

func textSection(output *strings.Builder, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	output.WriteString("\n" + title + "\n")
	output.WriteString(body)
	output.WriteString("\n")
}

func textList(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString("\n" + title + "\n")
	for _, item := range items {
		output.WriteString("- " + item + "\n")
	}
}

// JobTextFormatter renders a parsed job posting as plain text
type JobTextFormatter struct{}

func (f *JobTextFormatter) Format(data any) (string, error) {
	job, err := asJob(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("=== JOB DESCRIPTION ===\n")
	output.WriteString(fmt.Sprintf("Title: %s\n", orNA(job.JobTitle)))
	output.WriteString(fmt.Sprintf("Company: %s\n", orNA(job.JobPoster)))
	textSection(&output, "Profile:", job.Profile)
	textList(&output, "Required skills:", job.RequiredSkills)
	textList(&output, "Tasks:", job.Tasks)
	return output.String(), nil
}

func (f *JobTextFormatter) SupportedType() string { return TypeJob }

// TailorTextFormatter handles text formatting for tailor results
type TailorTextFormatter struct{}

func (f *TailorTextFormatter) Format(data any) (string, error) {
	result, err := asTailor(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("=== TAILORED RESUME ===\n\n")
	writeResumeText(&output, result.Resume)
	output.WriteString("\n")

	output.WriteString("=== WORKFLOW ===\n")
	if result.RunID != "" {
		output.WriteString(fmt.Sprintf("Run: %s\n", result.RunID))
	}
	output.WriteString(fmt.Sprintf("Target: %s at %s\n", orNA(result.JobDescription.JobTitle), orNA(result.JobDescription.JobPoster)))
	output.WriteString(fmt.Sprintf("Iterations: %d\n", result.Iterations))
	output.WriteString(fmt.Sprintf("Stop reason: %s\n", result.StopReason))
	textList(&output, "Remaining validation errors:", result.ValidationErrors)
	textList(&output, "Open revision steps:", result.RevisionSteps)

	return output.String(), nil
}

func (f *TailorTextFormatter) SupportedType() string { return TypeTailor }

// RunsTextFormatter lists run history as aligned columns
type RunsTextFormatter struct{}

func (f *RunsTextFormatter) Format(data any) (string, error) {
	runs, ok := data.([]types.RunRecord)
	if !ok {
		return "", fmt.Errorf("expected []RunRecord, got %T", data)
	}
	if len(runs) == 0 {
		return "No runs recorded.\n", nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("%-36s  %-20s  %-4s  %-16s  %s\n", "ID", "CREATED", "ITER", "STOP", "JOB"))
	for _, run := range runs {
		status := run.StopReason
		if !run.Succeeded {
			status = "failed"
		}
		output.WriteString(fmt.Sprintf("%-36s  %-20s  %-4d  %-16s  %s\n",
			run.ID, run.CreatedAt, run.Iterations, status, jobLabel(run)))
	}
	return output.String(), nil
}

func (f *RunsTextFormatter) SupportedType() string { return TypeRuns }

func jobLabel(run types.RunRecord) string {
	switch {
	case run.JobTitle != "" && run.JobPoster != "":
		return run.JobTitle + " @ " + run.JobPoster
	case run.JobTitle != "":
		return run.JobTitle
	default:
		return run.JobPoster
	}
}

// entries renders map entries as "key: value" pairs in key order.
func entries(items []map[string]string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		parts := make([]string, 0, len(item))
		for _, k := range sortedKeys(item) {
			if item[k] != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", k, item[k]))
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, "; "))
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
