package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultsViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestLoadFromViperDefaults(t *testing.T) {
	v := newDefaultsViper()
	v.Set("ai.apiKey", "test-key")

	cfg, err := loadFromViper(v, "")
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 3, cfg.Workflow.MaxIterations)
	assert.Equal(t, "brace", cfg.Workflow.Extractor)
	assert.Equal(t, 2000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 200, cfg.Ingest.ChunkOverlap)
	assert.Equal(t, "resumes", cfg.Export.OutputDir)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)

	gen, err := cfg.GetOperationConfig(OperationGenerate)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", gen.Model)
	assert.Equal(t, "test-key", gen.APIKey)
	assert.InDelta(t, 0.4, float64(*gen.Temperature), 0.0001)
	assert.True(t, gen.CircuitBreaker.Enabled)
}

func TestLoadFromYAML(t *testing.T) {
	yaml := `
ai:
  provider: ollama
  correct:
    model: llama3:70b
workflow:
  maxIterations: 5
  extractor: fenced
`
	v := newDefaultsViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

	cfg, err := loadFromViper(v, "inline")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.AI.BaseURL)
	assert.Equal(t, "llama3", cfg.AI.Model)
	assert.Equal(t, 5, cfg.Workflow.MaxIterations)

	correct, err := cfg.GetOperationConfig(OperationCorrect)
	require.NoError(t, err)
	assert.Equal(t, "llama3:70b", correct.Model)
	assert.Equal(t, ProviderOllama, correct.Provider)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		v := newDefaultsViper()
		var cfg Config
		require.NoError(t, v.Unmarshal(&cfg))
		cfg.AI.APIKey = "k"
		return &cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.AI.Provider = "anthropic" }, wantErr: "unsupported AI provider"},
		{name: "missing key", mutate: func(c *Config) { c.AI.APIKey = "" }, wantErr: "API key is required"},
		{name: "ollama needs no key", mutate: func(c *Config) { c.AI.Provider = ProviderOllama; c.AI.APIKey = "" }},
		{name: "zero iterations", mutate: func(c *Config) { c.Workflow.MaxIterations = 0 }, wantErr: "maxIterations"},
		{name: "bad extractor", mutate: func(c *Config) { c.Workflow.Extractor = "regex" }, wantErr: "extractor"},
		{name: "overlap too large", mutate: func(c *Config) { c.Ingest.ChunkOverlap = c.Ingest.ChunkSize }, wantErr: "chunkOverlap"},
		{name: "bad default format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, wantErr: "invalid default format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestServerAPIKeyFallbacks(t *testing.T) {
	cfg := &Config{Server: ServerConfig{APIKeys: []string{"a, b ,c"}}}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)

	t.Setenv("RESUMEFORGE_SERVER_APIKEYS", "x,y")
	cfg = &Config{}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"x", "y"}, cfg.Server.APIKeys)
}

func TestAIKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg := &Config{AI: AIConfig{Provider: ProviderOpenAI, Model: "gemini-2.0-flash"}}
	cfg.applyFallbacks()

	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
}

func TestPromptFilesAreAbsolute(t *testing.T) {
	cfg := &Config{AI: AIConfig{Generate: OperationAIConfig{Prompts: PromptConfig{UserFile: "prompts/generate.md"}}}}
	files := cfg.PromptFiles()
	require.Len(t, files, 1)
	assert.True(t, filepath.IsAbs(files[0].Path))
	assert.Equal(t, OperationGenerate, files[0].Operation)
	assert.Equal(t, "user", files[0].Type)
}
