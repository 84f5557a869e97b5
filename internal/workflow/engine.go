// Package workflow runs the generate, validate, analyze and correct loop
// that tailors a resume to a job posting.
package workflow

import (
	"context"
	"encoding/json"
	"strings"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	"resumeforge/internal/decoder"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Logger is the logging surface the engine needs. *errors.Logger satisfies it.
type Logger interface {
	Info(message string, args ...any)
	Debug(message string, args ...any)
	Warn(message string, args ...any)
	LogError(err error, message string, args ...any)
}

// PromptSource resolves the active user prompt template for an operation.
type PromptSource interface {
	UserPrompt(op string) string
}

// Observer receives stage and run level measurements.
type Observer interface {
	ObserveStage(ctx context.Context, stage string, errorCount, stepCount, iteration int)
	ObserveRun(ctx context.Context, iterations int, stopReason string, err error)
}

// Completers holds the model backends used by the three model-backed stages.
type Completers struct {
	Generate ai.Completer
	Analyze  ai.Completer
	Correct  ai.Completer
}

// Engine runs tailoring workflows. It is safe for concurrent use; all
// per-run state lives in the run value.
type Engine struct {
	completers    Completers
	prompts       PromptSource
	decoder       *decoder.Decoder
	maxIterations int
	logger        Logger
	observer      Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxIterations caps the number of SelfCorrect passes.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithDecoder replaces the default BraceSpan decoder.
func WithDecoder(d *decoder.Decoder) Option {
	return func(e *Engine) { e.decoder = d }
}

// WithPrompts sets where user prompt templates come from.
func WithPrompts(p PromptSource) Option {
	return func(e *Engine) { e.prompts = p }
}

// WithLogger sets the engine logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// DefaultMaxIterations is used when no cap is configured.
const DefaultMaxIterations = 3

// NewEngine builds an engine from the three stage completers.
func NewEngine(completers Completers, opts ...Option) *Engine {
	e := &Engine{
		completers:    completers,
		prompts:       defaultPrompts{},
		decoder:       decoder.New(decoder.BraceSpan{}),
		maxIterations: DefaultMaxIterations,
		logger:        errors.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineFromService wires an engine to the AI service and workflow config.
func NewEngineFromService(svc *ai.Service, cfg config.WorkflowConfig, logger Logger, observer Observer) (*Engine, error) {
	extractor, err := decoder.ExtractorByName(cfg.Extractor)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid workflow extractor", err)
	}

	opts := []Option{
		WithMaxIterations(cfg.MaxIterations),
		WithDecoder(decoder.New(extractor)),
		WithPrompts(svc),
		WithLogger(logger),
	}
	if observer != nil {
		opts = append(opts, WithObserver(observer))
	}

	return NewEngine(Completers{
		Generate: svc.Completer(config.OperationGenerate),
		Analyze:  svc.Completer(config.OperationAnalyze),
		Correct:  svc.Completer(config.OperationCorrect),
	}, opts...), nil
}

type defaultPrompts struct{}

func (defaultPrompts) UserPrompt(op string) string { return ai.DefaultUserPrompts[op] }

// run carries the mutable state of a single workflow execution.
type run struct {
	engine *Engine
	state  *types.WorkflowState

	// pending holds stage failure messages for the next validation pass.
	pending []string
}

func (r *run) execute(ctx context.Context, stage Stage) Delta {
	switch stage {
	case GenerateInitial:
		return r.generateInitial(ctx)
	case ValidateATS:
		return r.validateATS()
	case AnalyzeAlignment:
		return r.analyzeAlignment(ctx)
	case SelfCorrect:
		return r.selfCorrect(ctx)
	default:
		return Delta{}
	}
}

func (r *run) generateInitial(ctx context.Context) Delta {
	prompt, err := ai.BuildPrompt(r.engine.prompts.UserPrompt(config.OperationGenerate), ai.PromptData{
		BaseResume:     toJSON(r.state.BaseResume),
		JobDescription: toJSON(r.state.JobDescription),
		Schema:         ai.ResumeJSONShape,
	})
	if err != nil {
		return failure("Generation failed", err)
	}

	resume, err := r.completeResume(ctx, r.engine.completers.Generate, prompt, "generate")
	if err != nil {
		r.engine.logger.LogError(err, "Generation error")
		return failure("Generation failed", err)
	}
	return Delta{Resume: resume}
}

func (r *run) validateATS() Delta {
	violations := CheckATS(r.state.GeneratedResume)
	score := atsScore(violations)

	messages := make([]string, 0, len(r.pending)+len(violations))
	messages = append(messages, r.pending...)
	messages = append(messages, violations...)
	r.pending = nil

	return Delta{ValidationErrors: messages, ATSScore: &score}
}

func (r *run) analyzeAlignment(ctx context.Context) Delta {
	none := Delta{RevisionSteps: []string{}}

	if r.state.GeneratedResume == nil {
		r.engine.logger.Debug("Skipping alignment analysis without a resume")
		return none
	}

	prompt, err := ai.BuildPrompt(r.engine.prompts.UserPrompt(config.OperationAnalyze), ai.PromptData{
		Resume:         toJSON(r.state.GeneratedResume),
		JobDescription: toJSON(r.state.JobDescription),
	})
	if err != nil {
		r.engine.logger.Warn("Alignment analysis skipped", "error", err.Error())
		return none
	}

	reply, err := r.engine.completers.Analyze.Complete(ctx, prompt)
	if err != nil {
		if errors.Code(err) != errors.ErrCodeCompletionEmpty {
			r.engine.logger.Warn("Alignment analysis failed", "error", err.Error())
		}
		return none
	}

	if reportsNoIssues(reply) {
		return none
	}
	return Delta{RevisionSteps: []string{reply}}
}

func (r *run) selfCorrect(ctx context.Context) Delta {
	current := r.state.GeneratedResume
	if current == nil {
		current = &r.state.BaseResume
	}

	prompt, err := ai.BuildPrompt(r.engine.prompts.UserPrompt(config.OperationCorrect), ai.PromptData{
		Resume:           toJSON(current),
		JobDescription:   toJSON(r.state.JobDescription),
		ValidationErrors: r.state.ValidationErrors,
		RevisionSteps:    r.state.RevisionSteps,
		Schema:           ai.ResumeJSONShape,
	})
	if err != nil {
		return failure("Correction failed", err)
	}

	resume, err := r.completeResume(ctx, r.engine.completers.Correct, prompt, "correct")
	if err != nil {
		r.engine.logger.LogError(err, "Correction error")
		return failure("Correction failed", err)
	}
	return Delta{Resume: resume}
}

// completeResume runs one completion and decodes the reply.
func (r *run) completeResume(ctx context.Context, c ai.Completer, prompt, op string) (*types.CandidateResume, error) {
	reply, err := c.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	resume, issues, err := r.engine.decoder.Decode(reply, nil)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		r.engine.logger.Debug("Decoded resume with issues", "operation", op, "issues", issues)
	}
	return resume, nil
}

// reportsNoIssues treats an empty reply or the NO_ISSUES marker as a clean analysis.
func reportsNoIssues(reply string) bool {
	trimmed := strings.Trim(strings.TrimSpace(reply), "`\"'.")
	return trimmed == "" || strings.EqualFold(trimmed, ai.NoIssuesMarker)
}

func failure(prefix string, err error) Delta {
	return Delta{Failure: prefix + ": " + err.Error()}
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
