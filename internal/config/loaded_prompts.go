package config

import (
	"sync"
)

var loadedPrompts = NewPromptStore()

// LoadedPrompts holds the content of prompts loaded from files for one operation
type LoadedPrompts struct {
	System string
	User   string
}

// PromptStore holds file-loaded prompts per operation. It is safe for
// concurrent use so the server can swap prompts while requests run.
type PromptStore struct {
	mu      sync.RWMutex
	prompts map[string]LoadedPrompts
}

// NewPromptStore returns an empty store.
func NewPromptStore() *PromptStore {
	return &PromptStore{prompts: make(map[string]LoadedPrompts)}
}

// Get returns a copy of the prompts loaded for an operation.
func (s *PromptStore) Get(op string) LoadedPrompts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompts[op]
}

// Set replaces the prompts loaded for an operation.
func (s *PromptStore) Set(op string, p LoadedPrompts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[op] = p
}

// Count returns how many non-empty prompts are loaded.
func (s *PromptStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.prompts {
		if p.System != "" {
			n++
		}
		if p.User != "" {
			n++
		}
	}
	return n
}

// GetLoadedPrompts returns the process-wide prompt store.
func GetLoadedPrompts() *PromptStore {
	return loadedPrompts
}
