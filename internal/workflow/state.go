package workflow

import "resumeforge/internal/types"

// Stage is a node of the tailoring state machine.
type Stage int

const (
	GenerateInitial Stage = iota
	ValidateATS
	AnalyzeAlignment
	SelfCorrect
	Terminal
)

func (s Stage) String() string {
	switch s {
	case GenerateInitial:
		return "generate_initial"
	case ValidateATS:
		return "validate_ats"
	case AnalyzeAlignment:
		return "analyze_alignment"
	case SelfCorrect:
		return "self_correct"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// StopReason explains why a run reached Terminal.
type StopReason string

const (
	StopCompleted      StopReason = "completed"
	StopIterationLimit StopReason = "iteration_limit"
)

// Delta is the change a stage asks the engine to apply.
// Nil fields leave the state untouched.
type Delta struct {
	Resume           *types.CandidateResume
	ValidationErrors []string
	RevisionSteps    []string
	ATSScore         *float64

	// Failure is a stage failure message carried into the next validation pass.
	Failure string
}

// apply writes d into state. Slices are copied so deltas never alias state.
func apply(state *types.WorkflowState, d Delta) {
	if d.Resume != nil {
		resume := d.Resume.Clone()
		state.GeneratedResume = &resume
	}
	if d.ValidationErrors != nil {
		state.ValidationErrors = append([]string{}, d.ValidationErrors...)
	}
	if d.RevisionSteps != nil {
		state.RevisionSteps = append([]string{}, d.RevisionSteps...)
	}
	if d.ATSScore != nil {
		state.ATSScore = *d.ATSScore
	}
}

// needsRevision is the branch taken after AnalyzeAlignment.
func needsRevision(state *types.WorkflowState) bool {
	return len(state.ValidationErrors) > 0 || len(state.RevisionSteps) > 0
}

// transition returns the stage after from. iteration is the number of
// SelfCorrect passes completed so far. A non-empty StopReason is returned
// together with Terminal.
func transition(from Stage, state *types.WorkflowState, iteration, maxIterations int) (Stage, StopReason) {
	switch from {
	case GenerateInitial, SelfCorrect:
		return ValidateATS, ""
	case ValidateATS:
		return AnalyzeAlignment, ""
	case AnalyzeAlignment:
		if !needsRevision(state) {
			return Terminal, StopCompleted
		}
		if iteration >= maxIterations {
			return Terminal, StopIterationLimit
		}
		return SelfCorrect, ""
	default:
		return Terminal, StopCompleted
	}
}
