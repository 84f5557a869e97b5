package workflow

import (
	"context"
	stderrors "errors"
	"fmt"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceStep records the state after one stage executed.
type TraceStep struct {
	Stage      string `json:"stage"`
	ErrorCount int    `json:"error_count"`
	StepCount  int    `json:"step_count"`
	Iteration  int    `json:"iteration"`
}

// Result is the outcome of RunDetailed.
type Result struct {
	Resume           *types.CandidateResume `json:"resume,omitempty"`
	Iterations       int                    `json:"iterations"`
	StopReason       StopReason             `json:"stop_reason"`
	ValidationErrors []string               `json:"validation_errors"`
	RevisionSteps    []string               `json:"revision_steps"`
	ATSScore         float64                `json:"ats_score"`
	Trace            []TraceStep            `json:"trace"`
}

// Run tailors base to job and returns the final resume.
func (e *Engine) Run(ctx context.Context, base types.CandidateResume, job types.JobRequirement) (types.CandidateResume, error) {
	result, err := e.RunDetailed(ctx, base, job)
	if err != nil {
		return types.CandidateResume{}, err
	}
	return *result.Resume, nil
}

// RunDetailed tailors base to job. The returned Result is never nil and
// describes how far the run got, also when an error is returned.
func (e *Engine) RunDetailed(ctx context.Context, base types.CandidateResume, job types.JobRequirement) (*Result, error) {
	tracer := otel.Tracer("resumeforge.workflow")
	ctx, span := tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("job.title", job.JobTitle),
		attribute.Int("workflow.max_iterations", e.maxIterations),
	))
	defer span.End()

	state := types.NewWorkflowState(base, job)
	r := &run{engine: e, state: &state}
	result := &Result{}

	stage := GenerateInitial
	iteration := 0
	var stop StopReason

	for stage != Terminal {
		if err := ctx.Err(); err != nil {
			runErr := errors.NewWorkflowError(errors.ErrCodeCancelled,
				fmt.Sprintf("workflow cancelled before %s", stage), err)
			return e.finish(ctx, span, result, &state, iteration, stop, runErr)
		}

		delta := r.execute(ctx, stage)
		apply(&state, delta)
		if delta.Failure != "" {
			r.pending = append(r.pending, delta.Failure)
		}
		if stage == SelfCorrect {
			iteration++
		}

		step := TraceStep{
			Stage:      stage.String(),
			ErrorCount: len(state.ValidationErrors),
			StepCount:  len(state.RevisionSteps),
			Iteration:  iteration,
		}
		result.Trace = append(result.Trace, step)
		e.logger.Info("Workflow step",
			"stage", step.Stage,
			"error_count", step.ErrorCount,
			"step_count", step.StepCount,
			"iteration", step.Iteration)
		span.AddEvent("stage", trace.WithAttributes(
			attribute.String("stage", step.Stage),
			attribute.Int("error_count", step.ErrorCount),
			attribute.Int("step_count", step.StepCount),
			attribute.Int("iteration", step.Iteration),
		))
		if e.observer != nil {
			e.observer.ObserveStage(ctx, step.Stage, step.ErrorCount, step.StepCount, step.Iteration)
		}

		stage, stop = transition(stage, &state, iteration, e.maxIterations)
	}

	var runErr error
	switch {
	case state.GeneratedResume == nil && stop == StopIterationLimit:
		runErr = errors.NewWorkflowError(errors.ErrCodeMaxIterations,
			fmt.Sprintf("iteration limit of %d reached without a usable resume", e.maxIterations),
			stderrors.Join(errors.ErrMaxIterations, errors.ErrGenerationFailed))
	case state.GeneratedResume == nil:
		runErr = errors.NewWorkflowError(errors.ErrCodeGenerationFailed,
			"workflow finished without a usable resume", errors.ErrGenerationFailed)
	case stop == StopIterationLimit:
		e.logger.Warn("Iteration limit reached, returning best effort resume",
			"iterations", iteration,
			"error_count", len(state.ValidationErrors),
			"step_count", len(state.RevisionSteps))
	}

	return e.finish(ctx, span, result, &state, iteration, stop, runErr)
}

func (e *Engine) finish(ctx context.Context, span trace.Span, result *Result, state *types.WorkflowState, iteration int, stop StopReason, runErr error) (*Result, error) {
	result.Resume = state.GeneratedResume
	result.Iterations = iteration
	result.StopReason = stop
	result.ValidationErrors = state.ValidationErrors
	result.RevisionSteps = state.RevisionSteps
	result.ATSScore = state.ATSScore

	span.SetAttributes(
		attribute.Int("workflow.iterations", iteration),
		attribute.String("workflow.stop_reason", string(stop)),
	)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		e.logger.LogError(runErr, "Workflow failed", "iterations", iteration)
	}
	if e.observer != nil {
		e.observer.ObserveRun(ctx, iteration, string(stop), runErr)
	}
	return result, runErr
}
