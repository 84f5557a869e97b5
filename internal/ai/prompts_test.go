package ai

import (
	"testing"

	"resumeforge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPromptsCoverEveryOperation(t *testing.T) {
	for _, op := range config.Operations {
		assert.NotEmpty(t, DefaultSystemPrompts[op], op)
		assert.NotEmpty(t, DefaultUserPrompts[op], op)
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("correction lists issues", func(t *testing.T) {
		out, err := BuildPrompt(DefaultUserPrompts[config.OperationCorrect], PromptData{
			Resume:           `{"full_name":"Ada"}`,
			ValidationErrors: []string{"Insufficient skills listed"},
			RevisionSteps:    []string{"Add Kubernetes"},
			Schema:           ResumeJSONShape,
		})
		require.NoError(t, err)
		assert.Contains(t, out, "- Insufficient skills listed")
		assert.Contains(t, out, "Add Kubernetes")
		assert.Contains(t, out, `{"full_name":"Ada"}`)
		assert.Contains(t, out, `"phone_number"`)
	})

	t.Run("analysis mentions the no issues marker", func(t *testing.T) {
		out, err := BuildPrompt(DefaultUserPrompts[config.OperationAnalyze], PromptData{Resume: "{}", JobDescription: "{}"})
		require.NoError(t, err)
		assert.Contains(t, out, NoIssuesMarker)
	})

	t.Run("unknown field fails", func(t *testing.T) {
		_, err := BuildPrompt("{{.Missing}}", PromptData{})
		assert.Error(t, err)
	})

	t.Run("bad template fails", func(t *testing.T) {
		_, err := BuildPrompt("{{.Resume", PromptData{})
		assert.ErrorContains(t, err, "parse prompt template")
	})
}
