package workflow

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"resumeforge/internal/ai"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted replays canned replies in order and records the prompts it saw.
type scripted struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

type reply struct {
	text string
	err  error
}

func script(replies ...reply) *scripted { return &scripted{replies: replies} }

func (s *scripted) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", fmt.Errorf("unexpected call %d", len(s.prompts))
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

func (s *scripted) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

const goodResume = `{"full_name":"Ada Lovelace","profile":"Backend engineer","skills":["Go","SQL","Kubernetes","Terraform","gRPC"],"experience":[{"company":"Engines Ltd","role and details":"Built pipelines"}]}`

const thinResume = `{"full_name":"Ada Lovelace","profile":"","skills":["Go"],"experience":[]}`

type stageRecorder struct {
	stages []string
	runs   int
	runErr error
}

func (o *stageRecorder) ObserveStage(_ context.Context, stage string, _, _, _ int) {
	o.stages = append(o.stages, stage)
}

func (o *stageRecorder) ObserveRun(_ context.Context, _ int, _ string, err error) {
	o.runs++
	o.runErr = err
}

func baseInputs() (types.CandidateResume, types.JobRequirement) {
	return types.CandidateResume{FullName: "Ada Lovelace", Skills: []string{"Go"}},
		types.JobRequirement{JobTitle: "Backend Engineer", RequiredSkills: []string{"Go", "Kubernetes"}}
}

func TestGoodFirstDraftTerminatesAfterOnePass(t *testing.T) {
	gen := script(reply{text: "Here it is:\n" + goodResume})
	analyze := script(reply{err: errors.NewAIError(errors.ErrCodeCompletionEmpty, "empty", nil)})
	correct := script()
	observer := &stageRecorder{}

	engine := NewEngine(Completers{Generate: gen, Analyze: analyze, Correct: correct},
		WithLogger(errors.NewDiscardLogger()), WithObserver(observer))

	base, job := baseInputs()
	result, err := engine.RunDetailed(context.Background(), base, job)
	require.NoError(t, err)

	assert.Equal(t, StopCompleted, result.StopReason)
	assert.Equal(t, 0, result.Iterations)
	assert.Empty(t, result.ValidationErrors)
	assert.Empty(t, result.RevisionSteps)
	assert.Equal(t, "Ada Lovelace", result.Resume.FullName)
	assert.InDelta(t, 100.0, result.ATSScore, 0.001)
	assert.Equal(t, 0, correct.calls())
	assert.Equal(t, []string{"generate_initial", "validate_ats", "analyze_alignment"}, observer.stages)
	assert.Equal(t, 1, observer.runs)

	assert.Contains(t, gen.prompts[0], `"job_title":"Backend Engineer"`)
	assert.Contains(t, gen.prompts[0], "Mirror job description keywords")
}

func TestNoIssuesMarkerEndsRun(t *testing.T) {
	engine := NewEngine(Completers{
		Generate: script(reply{text: goodResume}),
		Analyze:  script(reply{text: " NO_ISSUES.\n"}),
		Correct:  script(),
	})

	base, job := baseInputs()
	resume, err := engine.Run(context.Background(), base, job)
	require.NoError(t, err)
	assert.Len(t, resume.Skills, 5)
}

func TestCorrectionLoopFixesResume(t *testing.T) {
	gen := script(reply{text: thinResume})
	analyze := script(
		reply{text: "1. Missing required skills: Kubernetes"},
		reply{text: "NO_ISSUES"},
	)
	correct := script(reply{text: "```json\n" + goodResume + "\n```"})

	engine := NewEngine(Completers{Generate: gen, Analyze: analyze, Correct: correct})

	base, job := baseInputs()
	result, err := engine.RunDetailed(context.Background(), base, job)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, StopCompleted, result.StopReason)
	require.Len(t, correct.prompts, 1)
	assert.Contains(t, correct.prompts[0], MsgMissingProfile)
	assert.Contains(t, correct.prompts[0], MsgInsufficientSkills)
	assert.Contains(t, correct.prompts[0], "Missing required skills: Kubernetes")

	stages := make([]string, 0, len(result.Trace))
	for _, s := range result.Trace {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []string{
		"generate_initial", "validate_ats", "analyze_alignment",
		"self_correct", "validate_ats", "analyze_alignment",
	}, stages)
}

func TestRevisionStepsResetEachPass(t *testing.T) {
	analyze := script(
		reply{text: "first round advice"},
		reply{text: "second round advice"},
		reply{text: "NO_ISSUES"},
	)
	engine := NewEngine(Completers{
		Generate: script(reply{text: goodResume}),
		Analyze:  analyze,
		Correct:  script(reply{text: goodResume}, reply{text: goodResume}),
	})

	base, job := baseInputs()
	result, err := engine.RunDetailed(context.Background(), base, job)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Iterations)
	for _, step := range result.Trace {
		assert.LessOrEqual(t, step.StepCount, 1, step.Stage)
	}
}

func TestIterationCapReturnsBestEffortResume(t *testing.T) {
	const maxIterations = 2
	analyze := script()
	correct := script()
	for range maxIterations + 1 {
		analyze.replies = append(analyze.replies, reply{text: "still needs work"})
	}
	for range maxIterations {
		correct.replies = append(correct.replies, reply{text: thinResume})
	}

	engine := NewEngine(Completers{Generate: script(reply{text: thinResume}), Analyze: analyze, Correct: correct},
		WithMaxIterations(maxIterations))

	base, job := baseInputs()
	result, err := engine.RunDetailed(context.Background(), base, job)
	require.NoError(t, err)

	assert.Equal(t, StopIterationLimit, result.StopReason)
	assert.Equal(t, maxIterations, result.Iterations)
	assert.Equal(t, maxIterations, correct.calls())
	assert.NotNil(t, result.Resume)
	assert.Equal(t, []string{MsgMissingProfile, MsgInsufficientSkills, MsgMissingExperience}, result.ValidationErrors)
}

func TestIterationCapWithoutResumeFails(t *testing.T) {
	failing := reply{err: errors.NewAIError(errors.ErrCodeCompletionFailed, "backend down", nil)}
	engine := NewEngine(Completers{
		Generate: script(failing),
		Analyze:  script(),
		Correct:  script(failing),
	}, WithMaxIterations(1))

	base, job := baseInputs()
	result, err := engine.RunDetailed(context.Background(), base, job)
	require.Error(t, err)

	assert.ErrorIs(t, err, errors.ErrMaxIterations)
	assert.ErrorIs(t, err, errors.ErrGenerationFailed)
	assert.Equal(t, errors.ErrCodeMaxIterations, errors.Code(err))
	assert.Equal(t, StopIterationLimit, result.StopReason)
	assert.Nil(t, result.Resume)

	require.NotEmpty(t, result.ValidationErrors)
	assert.True(t, strings.HasPrefix(result.ValidationErrors[0], "Correction failed: "), result.ValidationErrors[0])
	assert.Equal(t, []string{MsgMissingProfile, MsgInsufficientSkills, MsgMissingExperience}, result.ValidationErrors[1:])

	_, err = NewEngine(Completers{Generate: script(failing), Analyze: script(), Correct: script(failing)},
		WithMaxIterations(1)).Run(context.Background(), base, job)
	assert.ErrorIs(t, err, errors.ErrGenerationFailed)
}

func TestGenerationFailureIsRecordedAheadOfRules(t *testing.T) {
	gen := script(reply{text: "I'd rather not"})
	correct := script(reply{text: goodResume})
	analyze := script(reply{text: "NO_ISSUES"})

	engine := NewEngine(Completers{Generate: gen, Analyze: analyze, Correct: correct})
	base, job := baseInputs()
	result, err := engine.RunDetailed(context.Background(), base, job)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Trace), 2)
	assert.Equal(t, 4, result.Trace[1].ErrorCount)
	assert.Contains(t, correct.prompts[0], "Generation failed: no JSON payload found")
	assert.Equal(t, 1, result.Iterations)
}

func TestAnalysisFailureIsNotFatal(t *testing.T) {
	engine := NewEngine(Completers{
		Generate: script(reply{text: goodResume}),
		Analyze:  script(reply{err: stderrors.New("connection reset")}),
		Correct:  script(),
	})

	base, job := baseInputs()
	result, err := engine.RunDetailed(context.Background(), base, job)
	require.NoError(t, err)
	assert.Equal(t, StopCompleted, result.StopReason)
	assert.Empty(t, result.RevisionSteps)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := ai.CompleterFunc(func(context.Context, string) (string, error) {
		cancel()
		return goodResume, nil
	})
	analyze := script()

	engine := NewEngine(Completers{Generate: gen, Analyze: analyze, Correct: script()})
	base, job := baseInputs()
	result, err := engine.RunDetailed(ctx, base, job)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCancelled, errors.Code(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, result.Trace, 1)
	assert.Equal(t, 0, analyze.calls())
}

func TestEngineDoesNotMutateInputs(t *testing.T) {
	engine := NewEngine(Completers{
		Generate: script(reply{text: goodResume}),
		Analyze:  script(reply{text: "NO_ISSUES"}),
		Correct:  script(),
	})

	base, job := baseInputs()
	_, err := engine.Run(context.Background(), base, job)
	require.NoError(t, err)

	assert.Equal(t, []string{"Go"}, base.Skills)
	assert.Equal(t, []string{"Go", "Kubernetes"}, job.RequiredSkills)
}
