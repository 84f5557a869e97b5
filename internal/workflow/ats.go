package workflow

import (
	"strings"

	"resumeforge/internal/types"
)

// Rule messages reported by ValidateATS, in evaluation order.
const (
	MsgMissingProfile     = "Missing summary/profile section"
	MsgInsufficientSkills = "Insufficient skills listed"
	MsgMissingExperience  = "Missing work experience section"
)

const (
	minSkills    = 5
	atsRuleCount = 3
)

// CheckATS returns the ATS rule violations for resume. A nil resume fails every rule.
// The result depends only on the resume.
func CheckATS(resume *types.CandidateResume) []string {
	if resume == nil {
		return []string{MsgMissingProfile, MsgInsufficientSkills, MsgMissingExperience}
	}

	violations := []string{}
	if strings.TrimSpace(resume.Profile) == "" {
		violations = append(violations, MsgMissingProfile)
	}
	if len(resume.Skills) < minSkills {
		violations = append(violations, MsgInsufficientSkills)
	}
	if len(resume.Experience) == 0 {
		violations = append(violations, MsgMissingExperience)
	}
	return violations
}

// atsScore is the share of ATS rules passed, from 0 to 100.
func atsScore(violations []string) float64 {
	return 100 * float64(atsRuleCount-len(violations)) / atsRuleCount
}
