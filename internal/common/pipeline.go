package common

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/ingest"
	"resumeforge/internal/observability"
	"resumeforge/internal/store"
	"resumeforge/internal/types"
	"resumeforge/internal/workflow"
)

// Pipeline wires the AI service, the tailoring engine, the parsers and the
// run history together. The CLI and the HTTP server both drive it.
type Pipeline struct {
	Config  *config.Config
	AI      *ai.Service
	Engine  *workflow.Engine
	Jobs    *ingest.JobParser
	Resumes *ingest.ResumeParser
	Store   *store.Store // nil when run history is disabled
	Obs     *observability.ObservabilityManager

	logger *errors.Logger
}

// NewPipeline builds every component from cfg. obs may be nil.
func NewPipeline(cfg *config.Config, logger *errors.Logger, obs *observability.ObservabilityManager) (*Pipeline, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	if obs == nil {
		var err error
		obs, err = observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	svc, err := ai.NewService(cfg, logger, obs)
	if err != nil {
		return nil, err
	}

	engine, err := workflow.NewEngineFromService(svc, cfg.Workflow, logger, obs)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	jobs, resumes, err := ingest.NewParsersFromService(svc, cfg, logger)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}

	p := &Pipeline{
		Config:  cfg,
		AI:      svc,
		Engine:  engine,
		Jobs:    jobs,
		Resumes: resumes,
		Obs:     obs,
		logger:  logger,
	}

	if cfg.Store.Enabled {
		p.Store, err = store.Open(cfg.Store.Path)
		if err != nil {
			_ = svc.Close()
			return nil, err
		}
	}

	return p, nil
}

// ResolveJob returns the job requirement of a tailoring request, parsing
// the posting from its URL or text when no structured form is given.
func (p *Pipeline) ResolveJob(ctx context.Context, req types.TailorRequest) (types.JobRequirement, error) {
	var (
		job types.JobRequirement
		err error
	)
	switch {
	case req.JobDescription != nil:
		return *req.JobDescription, nil
	case strings.TrimSpace(req.JobURL) != "":
		job, err = p.Jobs.ParseURL(ctx, req.JobURL)
	case strings.TrimSpace(req.JobText) != "":
		job, err = p.Jobs.Parse(ctx, req.JobText)
	default:
		return types.JobRequirement{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"one of job_description, job_url or job_text is required", nil)
	}
	p.Obs.RecordBusinessMetric(ctx, observability.MetricJobParsed, err == nil)
	return job, err
}

// ParseResume parses free resume text and records the outcome.
func (p *Pipeline) ParseResume(ctx context.Context, text string) (types.CandidateResume, error) {
	resume, err := p.Resumes.Parse(ctx, text)
	p.Obs.RecordBusinessMetric(ctx, observability.MetricResumeParsed, err == nil)
	return resume, err
}

// Tailor runs the workflow and records the run. A history write failure
// is logged but does not fail the run.
func (p *Pipeline) Tailor(ctx context.Context, base types.CandidateResume, job types.JobRequirement) (types.TailorResult, error) {
	if !job.IsActionable() {
		p.logger.Warn("Job description has no required skills or tasks",
			"job_title", job.JobTitle)
	}

	result, runErr := p.Engine.RunDetailed(ctx, base, job)

	out := types.TailorResult{
		JobDescription:   job,
		Iterations:       result.Iterations,
		StopReason:       string(result.StopReason),
		ValidationErrors: result.ValidationErrors,
		RevisionSteps:    result.RevisionSteps,
	}
	if result.Resume != nil {
		out.Resume = *result.Resume
	}

	if p.Store != nil {
		// cancellation of the run must not prevent recording it
		id, err := p.Store.Record(context.WithoutCancel(ctx), runRecord(out, result.Resume != nil, runErr))
		if err != nil {
			p.logger.LogError(err, "Failed to record run")
		} else {
			out.RunID = id
		}
	}

	if runErr != nil {
		return out, runErr
	}
	return out, nil
}

// History lists recent runs. It fails when run history is disabled.
func (p *Pipeline) History(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if p.Store == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"run history is disabled (store.enabled=false)", nil)
	}
	return p.Store.List(ctx, limit)
}

// Run returns one recorded run including its tailored resume.
func (p *Pipeline) Run(ctx context.Context, id string) (types.RunRecord, error) {
	if p.Store == nil {
		return types.RunRecord{}, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"run history is disabled (store.enabled=false)", nil)
	}
	return p.Store.Get(ctx, id)
}

// ModelStatus reports the model behind every AI operation.
func (p *Pipeline) ModelStatus(ctx context.Context) map[string]*ai.ModelInfo {
	status := make(map[string]*ai.ModelInfo, len(config.Operations))
	if p.AI == nil {
		return status
	}
	for _, op := range config.Operations {
		status[op] = p.AI.GetModelInfo(ctx, op)
	}
	return status
}

// Stats reports circuit breaker state per AI operation.
func (p *Pipeline) Stats() map[string]any {
	if p.AI == nil {
		return map[string]any{}
	}
	return p.AI.Stats()
}

// Close releases the AI providers and the history database.
func (p *Pipeline) Close() error {
	var errs []error
	if p.AI != nil {
		if err := p.AI.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Store != nil {
		if err := p.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func runRecord(out types.TailorResult, hasResume bool, runErr error) types.RunRecord {
	rec := types.RunRecord{
		JobTitle:   out.JobDescription.JobTitle,
		JobPoster:  out.JobDescription.JobPoster,
		Iterations: out.Iterations,
		StopReason: out.StopReason,
		ErrorCount: len(out.ValidationErrors),
		Succeeded:  runErr == nil,
	}
	if hasResume {
		if data, err := json.Marshal(out.Resume); err == nil {
			rec.ResumeJSON = string(data)
		}
	}
	return rec
}
