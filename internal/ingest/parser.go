package ingest

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	"resumeforge/internal/decoder"
	"resumeforge/internal/errors"
	"resumeforge/internal/extract"
	"resumeforge/internal/types"

	"golang.org/x/sync/errgroup"
)

// PromptSource resolves the active user prompt template for an operation.
type PromptSource interface {
	UserPrompt(op string) string
}

type defaultPrompts struct{}

func (defaultPrompts) UserPrompt(op string) string { return ai.DefaultUserPrompts[op] }

// Option configures a parser.
type Option func(*options)

type options struct {
	prompts PromptSource
	decoder *decoder.Decoder
	logger  *errors.Logger
	fetcher *Fetcher
}

// WithPrompts sets where user prompt templates come from.
func WithPrompts(p PromptSource) Option { return func(o *options) { o.prompts = p } }

// WithDecoder replaces the default BraceSpan decoder.
func WithDecoder(d *decoder.Decoder) Option { return func(o *options) { o.decoder = d } }

// WithLogger sets the parser logger.
func WithLogger(l *errors.Logger) Option { return func(o *options) { o.logger = l } }

// WithFetcher sets the page fetcher used by ParseURL.
func WithFetcher(f *Fetcher) Option { return func(o *options) { o.fetcher = f } }

func buildOptions(cfg config.IngestConfig, opts []Option) options {
	o := options{
		prompts: defaultPrompts{},
		decoder: decoder.New(decoder.BraceSpan{}),
		logger:  errors.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = errors.NewDiscardLogger()
	}
	if o.fetcher == nil {
		o.fetcher = NewFetcher(cfg)
	}
	return o
}

// JobParser extracts a JobRequirement from posting text, one chunk per
// model call.
type JobParser struct {
	completer   ai.Completer
	chunkSize   int
	overlap     int
	concurrency int
	options
}

// NewJobParser builds a JobParser.
func NewJobParser(completer ai.Completer, cfg config.IngestConfig, opts ...Option) *JobParser {
	p := &JobParser{
		completer:   completer,
		chunkSize:   cfg.ChunkSize,
		overlap:     cfg.ChunkOverlap,
		concurrency: cfg.Concurrency,
		options:     buildOptions(cfg, opts),
	}
	if p.chunkSize <= 0 {
		p.chunkSize = 2000
	}
	if p.concurrency <= 0 {
		p.concurrency = 1
	}
	return p
}

// ParseURL downloads a posting, strips its markup and parses it.
func (p *JobParser) ParseURL(ctx context.Context, url string) (types.JobRequirement, error) {
	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return types.JobRequirement{}, err
	}
	text, err := CleanHTML(page)
	if err != nil {
		return types.JobRequirement{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"job posting is not valid HTML", err)
	}
	p.logger.Debug("Fetched job posting", "url", url, "text_length", len(text))
	return p.Parse(ctx, text)
}

// Parse splits text into chunks, parses them concurrently and merges the
// results in chunk order. Chunks whose reply cannot be used are skipped;
// the parse fails only when no chunk succeeds.
func (p *JobParser) Parse(ctx context.Context, text string) (types.JobRequirement, error) {
	chunks := Split(text, p.chunkSize, p.overlap)
	if len(chunks) == 0 {
		return types.JobRequirement{}, errors.NewValidationError(errors.ErrCodeNoChunks,
			"no job description content found", nil)
	}

	template := p.prompts.UserPrompt(config.OperationParseJob)
	results := make([]*types.JobRequirement, len(chunks))

	var (
		mu        sync.Mutex
		chunkErrs []error
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			job, err := p.parseChunk(gCtx, template, chunk)
			if err != nil {
				if ctxErr := gCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				p.logger.Warn("Skipping job description chunk",
					"chunk", i,
					"error_code", errors.Code(err),
					"error", err.Error())
				mu.Lock()
				chunkErrs = append(chunkErrs, fmt.Errorf("chunk %d: %w", i, err))
				mu.Unlock()
				return nil
			}
			results[i] = &job
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.JobRequirement{}, errors.NewWorkflowError(errors.ErrCodeCancelled,
			"job parsing cancelled", err)
	}

	var (
		merged types.JobRequirement
		parsed int
	)
	for _, job := range results {
		if job == nil {
			continue
		}
		merged = decoder.MergeJob(merged, *job)
		parsed++
	}
	if parsed == 0 {
		return types.JobRequirement{}, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"no chunk of the job description could be parsed", stderrors.Join(chunkErrs...)).
			WithContext("chunks", len(chunks))
	}

	p.logger.Info("Parsed job description",
		"chunks", len(chunks),
		"parsed", parsed,
		"skills", len(merged.RequiredSkills),
		"tasks", len(merged.Tasks))
	return merged, nil
}

func (p *JobParser) parseChunk(ctx context.Context, template, chunk string) (types.JobRequirement, error) {
	prompt, err := ai.BuildPrompt(template, ai.PromptData{Chunk: chunk, Schema: ai.JobJSONShape})
	if err != nil {
		return types.JobRequirement{}, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"parseJob prompt template", err)
	}
	raw, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return types.JobRequirement{}, err
	}
	job, issues, err := p.decoder.DecodeJob(raw)
	if err != nil {
		return types.JobRequirement{}, err
	}
	if len(issues) > 0 {
		p.logger.Debug("Job chunk decoded with issues", "issues", issues)
	}
	return job, nil
}

// ResumeParser extracts a CandidateResume from plain resume text.
type ResumeParser struct {
	completer ai.Completer
	options
}

// NewResumeParser builds a ResumeParser.
func NewResumeParser(completer ai.Completer, opts ...Option) *ResumeParser {
	return &ResumeParser{completer: completer, options: buildOptions(config.IngestConfig{}, opts)}
}

// ParseFile extracts the text of a resume document and parses it.
func (p *ResumeParser) ParseFile(ctx context.Context, path string) (types.CandidateResume, error) {
	text, err := extract.Text(path)
	if err != nil {
		return types.CandidateResume{}, err
	}
	return p.Parse(ctx, text)
}

// Parse asks the model for the structured resume. Unlike the tailoring
// loop there is no later stage to repair a bad reply, so a decode
// failure is returned as an error.
func (p *ResumeParser) Parse(ctx context.Context, text string) (types.CandidateResume, error) {
	if strings.TrimSpace(text) == "" {
		return types.CandidateResume{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"resume text is empty", nil)
	}

	prompt, err := ai.BuildPrompt(p.prompts.UserPrompt(config.OperationParseResume),
		ai.PromptData{Text: text, Schema: ai.ResumeJSONShape})
	if err != nil {
		return types.CandidateResume{}, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"parseResume prompt template", err)
	}

	raw, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return types.CandidateResume{}, err
	}

	resume, issues, err := p.decoder.Decode(raw, nil)
	if err != nil {
		return types.CandidateResume{}, err
	}
	if len(issues) > 0 {
		p.logger.Debug("Resume decoded with issues", "issues", issues)
	}
	p.logger.Info("Parsed resume", "full_name", resume.FullName, "skills", len(resume.Skills))
	return *resume, nil
}

// NewParsersFromService wires both parsers to the AI service.
func NewParsersFromService(svc *ai.Service, cfg *config.Config, logger *errors.Logger) (*JobParser, *ResumeParser, error) {
	extractor, err := decoder.ExtractorByName(cfg.Workflow.Extractor)
	if err != nil {
		return nil, nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid workflow extractor", err)
	}
	opts := []Option{
		WithPrompts(svc),
		WithDecoder(decoder.New(extractor)),
		WithLogger(logger),
	}
	jobs := NewJobParser(svc.Completer(config.OperationParseJob), cfg.Ingest, opts...)
	resumes := NewResumeParser(svc.Completer(config.OperationParseResume), opts...)
	return jobs, resumes, nil
}
