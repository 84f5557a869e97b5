package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePrompt(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create prompt file %s: %v", name, err)
	}
	return path
}

func TestLoadPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	systemPromptContent := "Test system prompt for generation"
	userPromptContent := "Generate from {{.BaseResume}} and {{.JobDescription}}"

	systemPromptFile := writePrompt(t, tempDir, "system.generate.md", systemPromptContent)
	userPromptFile := writePrompt(t, tempDir, "user.generate.md", userPromptContent)

	config := &Config{
		AI: AIConfig{
			Generate: OperationAIConfig{
				Prompts: PromptConfig{
					SystemFile: systemPromptFile,
					UserFile:   userPromptFile,
				},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	loaded := GetLoadedPrompts().Get(OperationGenerate)

	if loaded.System != systemPromptContent {
		t.Errorf("Expected loaded system prompt content '%s', got '%s'", systemPromptContent, loaded.System)
	}

	if loaded.User != userPromptContent {
		t.Errorf("Expected loaded user prompt content '%s', got '%s'", userPromptContent, loaded.User)
	}

	if config.AI.Generate.Prompts.SystemFile != systemPromptFile {
		t.Error("Expected system prompt file path to be preserved")
	}
}

func TestValidatePromptFiles(t *testing.T) {
	tempDir := t.TempDir()
	validFile := writePrompt(t, tempDir, "valid.md", "Valid content")

	config := &Config{
		AI: AIConfig{
			Analyze: OperationAIConfig{
				Prompts: PromptConfig{SystemFile: validFile},
			},
		},
	}

	if err := config.validatePromptFiles(); err != nil {
		t.Errorf("Expected validation to pass for valid file, got error: %v", err)
	}

	config.AI.Analyze.Prompts.SystemFile = filepath.Join(tempDir, "nonexistent.md")

	if err := config.validatePromptFiles(); err == nil {
		t.Error("Expected validation to fail for non-existent file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Test prompt content"
	testFile := writePrompt(t, tempDir, "test.md", "  "+content+"\n\n")

	config := &Config{}
	loadedContent, err := config.loadPromptFromFile(testFile, "system", OperationCorrect)
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}

	if loadedContent != content {
		t.Errorf("Expected content '%s', got '%s'", content, loadedContent)
	}

	emptyFile := writePrompt(t, tempDir, "empty.md", "")
	if _, err := config.loadPromptFromFile(emptyFile, "system", OperationCorrect); err == nil {
		t.Error("Expected error for empty file")
	}

	if _, err := config.loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "system", OperationCorrect); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestReloadPromptFile(t *testing.T) {
	tempDir := t.TempDir()
	shared := writePrompt(t, tempDir, "shared.md", "version one")

	config := &Config{
		AI: AIConfig{
			ParseJob: OperationAIConfig{
				Prompts: PromptConfig{UserFile: shared},
			},
			ParseResume: OperationAIConfig{
				Prompts: PromptConfig{SystemFile: shared},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}

	writePrompt(t, tempDir, "shared.md", "version two")

	ops, err := config.ReloadPromptFile(shared)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 operations reloaded, got %v", ops)
	}

	if got := GetLoadedPrompts().Get(OperationParseJob).User; got != "version two" {
		t.Errorf("parseJob user prompt = %q, want %q", got, "version two")
	}
	if got := GetLoadedPrompts().Get(OperationParseResume).System; got != "version two" {
		t.Errorf("parseResume system prompt = %q, want %q", got, "version two")
	}

	writePrompt(t, tempDir, "shared.md", "   ")
	if _, err := config.ReloadPromptFile(shared); err == nil {
		t.Error("expected error when the reloaded file is empty")
	}
	if got := GetLoadedPrompts().Get(OperationParseJob).User; got != "version two" {
		t.Errorf("failed reload replaced prompt: got %q", got)
	}
}

func TestGetOperationConfigFallbacks(t *testing.T) {
	opTimeout := 5 * time.Second
	config := &Config{
		AI: AIConfig{
			Provider:         ProviderOllama,
			Model:            "llama3",
			BaseURL:          "http://localhost:11434",
			Timeout:          60 * time.Second,
			MaxRetries:       3,
			Temperature:      0.7,
			UseSystemPrompts: true,
			Analyze: OperationAIConfig{
				Model:   "llama3:70b",
				Timeout: &opTimeout,
				Prompts: PromptConfig{User: "inline analyze prompt"},
			},
		},
	}

	got, err := config.GetOperationConfig(OperationAnalyze)
	if err != nil {
		t.Fatalf("GetOperationConfig failed: %v", err)
	}

	if got.Provider != ProviderOllama || got.BaseURL != "http://localhost:11434" {
		t.Errorf("provider settings not inherited: %+v", got)
	}
	if got.Model != "llama3:70b" {
		t.Errorf("Model = %q, want operation override", got.Model)
	}
	if *got.Timeout != opTimeout {
		t.Errorf("Timeout = %v, want %v", *got.Timeout, opTimeout)
	}
	if *got.MaxRetries != 3 || *got.Temperature != 0.7 || !*got.UseSystemPrompts {
		t.Errorf("global fallbacks not applied: retries=%d temp=%v", *got.MaxRetries, *got.Temperature)
	}
	if got.Prompts.User != "inline analyze prompt" {
		t.Errorf("inline prompt lost: %q", got.Prompts.User)
	}

	if _, err := config.GetOperationConfig("evaluate"); err == nil {
		t.Error("expected error for unknown operation")
	}
}
