package types

import "strings"

// CandidateResume is the structured form of a resume.
// List fields are nil only before decoding; the decoder always fills them.
type CandidateResume struct {
	FullName    string              `json:"full_name" yaml:"full_name"`
	PhoneNumber *int64              `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
	Location    string              `json:"location" yaml:"location"`
	Socials     map[string]string   `json:"socials" yaml:"socials"`
	Profile     string              `json:"profile" yaml:"profile"`
	Skills      []string            `json:"skills" yaml:"skills"`
	Education   []map[string]string `json:"education" yaml:"education"`
	Experience  []map[string]string `json:"experience" yaml:"experience"`
	Projects    []map[string]string `json:"projects" yaml:"projects"` // name -> description
	Hobbies     []string            `json:"hobbies" yaml:"hobbies"`
	Languages   []string            `json:"languages" yaml:"languages"`
}

// Clone returns a deep copy so stages never alias state owned by another stage.
func (r CandidateResume) Clone() CandidateResume {
	out := r
	if r.PhoneNumber != nil {
		p := *r.PhoneNumber
		out.PhoneNumber = &p
	}
	if r.Socials != nil {
		out.Socials = make(map[string]string, len(r.Socials))
		for k, v := range r.Socials {
			out.Socials[k] = v
		}
	}
	out.Skills = cloneStrings(r.Skills)
	out.Hobbies = cloneStrings(r.Hobbies)
	out.Languages = cloneStrings(r.Languages)
	out.Education = cloneEntries(r.Education)
	out.Experience = cloneEntries(r.Experience)
	out.Projects = cloneEntries(r.Projects)
	return out
}

// JobRequirement is the structured form of a job posting.
type JobRequirement struct {
	JobPoster      string   `json:"job_poster" yaml:"job_poster"`
	JobTitle       string   `json:"job_title" yaml:"job_title"`
	RequiredSkills []string `json:"required_skills" yaml:"required_skills"`
	Tasks          []string `json:"tasks" yaml:"tasks"`
	Profile        string   `json:"profile" yaml:"profile"`
}

// IsActionable reports whether the posting carries enough to tailor against.
func (j JobRequirement) IsActionable() bool {
	return len(j.RequiredSkills) > 0 || len(j.Tasks) > 0
}

// IsEmpty reports whether no field has been filled.
func (j JobRequirement) IsEmpty() bool {
	return strings.TrimSpace(j.JobPoster) == "" &&
		strings.TrimSpace(j.JobTitle) == "" &&
		strings.TrimSpace(j.Profile) == "" &&
		len(j.RequiredSkills) == 0 &&
		len(j.Tasks) == 0
}

// WorkflowState is threaded through the tailoring state machine.
// BaseResume and JobDescription are never modified after construction.
type WorkflowState struct {
	BaseResume       CandidateResume  `json:"base_resume"`
	JobDescription   JobRequirement   `json:"job_description"`
	GeneratedResume  *CandidateResume `json:"generated_resume,omitempty"`
	ValidationErrors []string         `json:"validation_errors"`
	RevisionSteps    []string         `json:"revision_steps"`
	ATSScore         float64          `json:"ats_score"`
}

// NewWorkflowState builds the initial state for one run.
func NewWorkflowState(base CandidateResume, job JobRequirement) WorkflowState {
	return WorkflowState{
		BaseResume:       base,
		JobDescription:   job,
		ValidationErrors: []string{},
		RevisionSteps:    []string{},
	}
}

// TailorRequest is the API input for a tailoring run.
// Either JobDescription, JobURL or JobText must be provided.
type TailorRequest struct {
	BaseResume     CandidateResume `json:"base_resume"`
	JobDescription *JobRequirement `json:"job_description,omitempty"`
	JobURL         string          `json:"job_url,omitempty" validate:"omitempty,url"`
	JobText        string          `json:"job_text,omitempty"`
}

// TailorResult is the outcome of a tailoring run.
type TailorResult struct {
	RunID            string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Resume           CandidateResume `json:"resume" yaml:"resume"`
	JobDescription   JobRequirement  `json:"job_description" yaml:"job_description"`
	Iterations       int             `json:"iterations" yaml:"iterations"`
	StopReason       string          `json:"stop_reason" yaml:"stop_reason"`
	ValidationErrors []string        `json:"validation_errors" yaml:"validation_errors"`
	RevisionSteps    []string        `json:"revision_steps" yaml:"revision_steps"`
}

// ParseJobRequest is the API input for job parsing.
type ParseJobRequest struct {
	URL  string `json:"url,omitempty" validate:"omitempty,url"`
	Text string `json:"text,omitempty" validate:"required_without=URL"`
}

// ParseResumeRequest is the API input for resume parsing.
type ParseResumeRequest struct {
	Text string `json:"text" validate:"required"`
}

// ExportRequest is the API input for document export.
type ExportRequest struct {
	Resume CandidateResume `json:"resume"`
	Format string          `json:"format" validate:"required,oneof=pdf docx"`
}

// RunRecord is one entry of the run history.
type RunRecord struct {
	ID         string `json:"id" yaml:"id"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
	JobTitle   string `json:"job_title" yaml:"job_title"`
	JobPoster  string `json:"job_poster" yaml:"job_poster"`
	Iterations int    `json:"iterations" yaml:"iterations"`
	StopReason string `json:"stop_reason" yaml:"stop_reason"`
	ErrorCount int    `json:"error_count" yaml:"error_count"`
	Succeeded  bool   `json:"succeeded" yaml:"succeeded"`
	ResumeJSON string `json:"resume_json,omitempty" yaml:"resume_json,omitempty"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneEntries(in []map[string]string) []map[string]string {
	if in == nil {
		return nil
	}
	out := make([]map[string]string, len(in))
	for i, entry := range in {
		m := make(map[string]string, len(entry))
		for k, v := range entry {
			m[k] = v
		}
		out[i] = m
	}
	return out
}
