package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptFile identifies one configured prompt file.
type PromptFile struct {
	Operation string
	Type      string // "system" or "user"
	Path      string // absolute
}

// PromptFiles returns every prompt file referenced by the configuration.
func (c *Config) PromptFiles() []PromptFile {
	var files []PromptFile
	for _, op := range Operations {
		raw, err := c.operationConfig(op)
		if err != nil {
			continue
		}
		if raw.Prompts.SystemFile != "" {
			files = append(files, PromptFile{Operation: op, Type: "system", Path: absOrSelf(raw.Prompts.SystemFile)})
		}
		if raw.Prompts.UserFile != "" {
			files = append(files, PromptFile{Operation: op, Type: "user", Path: absOrSelf(raw.Prompts.UserFile)})
		}
	}
	return files
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	for _, op := range Operations {
		if err := c.loadOperationPrompts(op); err != nil {
			return fmt.Errorf("failed to load %s prompts: %w", op, err)
		}
	}

	if n := loadedPrompts.Count(); n == 0 {
		log.Println("[CONFIG] No custom prompt files loaded - using inline or built-in prompts")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded from files: %d", n)
	}
	return nil
}

// loadOperationPrompts reads both prompt files of one operation into the store.
func (c *Config) loadOperationPrompts(op string) error {
	raw, err := c.operationConfig(op)
	if err != nil {
		return err
	}

	var loaded LoadedPrompts
	if raw.Prompts.SystemFile != "" {
		content, err := c.loadPromptFromFile(raw.Prompts.SystemFile, "system", op)
		if err != nil {
			return err
		}
		loaded.System = content
	}
	if raw.Prompts.UserFile != "" {
		content, err := c.loadPromptFromFile(raw.Prompts.UserFile, "user", op)
		if err != nil {
			return err
		}
		loaded.User = content
	}

	loadedPrompts.Set(op, loaded)
	return nil
}

// ReloadPromptFile re-reads every operation whose prompts come from path.
// It returns the affected operations. On error the previous prompts stay active.
func (c *Config) ReloadPromptFile(path string) ([]string, error) {
	target := absOrSelf(path)
	var reloaded []string
	seen := make(map[string]bool)
	for _, pf := range c.PromptFiles() {
		if pf.Path != target || seen[pf.Operation] {
			continue
		}
		seen[pf.Operation] = true
		if err := c.loadOperationPrompts(pf.Operation); err != nil {
			return reloaded, err
		}
		reloaded = append(reloaded, pf.Operation)
	}
	return reloaded, nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, pf := range c.PromptFiles() {
		if _, err := os.Stat(pf.Path); os.IsNotExist(err) {
			validationErrors = append(validationErrors,
				fmt.Sprintf("%s %s prompt file not found: %s", pf.Operation, pf.Type, pf.Path))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
