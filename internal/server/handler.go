package server

import (
	"fmt"
	"net/http"
	"strconv"

	"resumeforge/internal/export"
	"resumeforge/internal/observability"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "resumeforge.api"

// createTailorHandler runs the full tailoring workflow for one request
func (s *Server) createTailorHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.tailor")
		defer span.End()

		var req types.TailorRequest
		if err := parseJSONRequest(r, &req); err != nil {
			s.rejectRequest(w, span, err)
			return
		}

		span.SetAttributes(
			attribute.String("operation", "tailor"),
			attribute.Bool("request.job_structured", req.JobDescription != nil),
			attribute.Bool("request.job_url", req.JobURL != ""),
			attribute.Int("request.job_text_length", len(req.JobText)),
		)

		job, err := s.Backend.ResolveJob(ctx, req)
		if err != nil {
			s.failSpan(span, err)
			s.writeAppError(w, "Failed to resolve job description", err)
			return
		}

		result, err := s.Backend.Tailor(ctx, req.BaseResume, job)
		span.SetAttributes(
			attribute.Int("workflow.iterations", result.Iterations),
			attribute.String("workflow.stop_reason", result.StopReason),
			attribute.Int("workflow.validation_errors", len(result.ValidationErrors)),
		)
		if err != nil {
			s.failSpan(span, err)
			s.writeAppError(w, "Failed to tailor resume", err)
			return
		}

		s.Logger.Info("Resume tailored via API",
			"request_id", r.Header.Get(requestIDHeader),
			"run_id", result.RunID,
			"iterations", result.Iterations,
			"stop_reason", result.StopReason)

		s.writeJSON(w, http.StatusOK, TailorResponse{
			RunID:            result.RunID,
			Resume:           result.Resume,
			JobDescription:   result.JobDescription,
			Iterations:       result.Iterations,
			StopReason:       result.StopReason,
			ValidationErrors: result.ValidationErrors,
		})
	}
}

// createParseJobHandler parses a job posting from a URL or text
func (s *Server) createParseJobHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.parse_job")
		defer span.End()

		var req types.ParseJobRequest
		if err := parseJSONRequest(r, &req); err != nil {
			s.rejectRequest(w, span, err)
			return
		}
		span.SetAttributes(
			attribute.String("operation", "parse_job"),
			attribute.Bool("request.url", req.URL != ""),
		)

		job, err := s.Backend.ResolveJob(ctx, types.TailorRequest{JobURL: req.URL, JobText: req.Text})
		if err != nil {
			s.failSpan(span, err)
			s.writeAppError(w, "Failed to parse job posting", err)
			return
		}
		s.writeJSON(w, http.StatusOK, job)
	}
}

// createParseResumeHandler parses free resume text
func (s *Server) createParseResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.parse_resume")
		defer span.End()

		var req types.ParseResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			s.rejectRequest(w, span, err)
			return
		}
		span.SetAttributes(
			attribute.String("operation", "parse_resume"),
			attribute.Int("request.text_length", len(req.Text)),
		)

		resume, err := s.Backend.ParseResume(ctx, req.Text)
		if err != nil {
			s.failSpan(span, err)
			s.writeAppError(w, "Failed to parse resume", err)
			return
		}
		s.writeJSON(w, http.StatusOK, resume)
	}
}

// createExportHandler renders a resume and returns the document bytes
func (s *Server) createExportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.export")
		defer span.End()

		var req types.ExportRequest
		if err := parseJSONRequest(r, &req); err != nil {
			s.rejectRequest(w, span, err)
			return
		}
		span.SetAttributes(
			attribute.String("operation", "export"),
			attribute.String("export.format", req.Format),
		)

		data, name, err := renderExport(req)
		om.RecordBusinessMetric(ctx, observability.MetricResumeExported, err == nil,
			attribute.String("format", req.Format))
		if err != nil {
			s.failSpan(span, err)
			s.writeAppError(w, "Failed to export resume", err)
			return
		}

		w.Header().Set("Content-Type", export.ContentTypes[req.Format])
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			s.Logger.LogError(err, "Failed to write exported document")
		}
	}
}

func renderExport(req types.ExportRequest) ([]byte, string, error) {
	data, err := export.Render(req.Resume, req.Format)
	if err != nil {
		return nil, "", err
	}
	name, err := export.Filename(req.Resume, req.Format)
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

func (s *Server) rejectRequest(w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", "validation"))
	span.SetStatus(codes.Error, "invalid request")
	writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
}

func (s *Server) failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
