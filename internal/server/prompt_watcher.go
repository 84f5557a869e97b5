package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"resumeforge/internal/errors"
)

// PromptReloadFunc is called with a prompt file that changed on disk.
type PromptReloadFunc func(path string)

// PromptWatcher watches prompt template files and reloads them after edits
type PromptWatcher struct {
	mu sync.Mutex

	files       []string
	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	timers        map[string]*time.Timer

	stopChan   chan struct{}
	reloadChan chan string

	reload  PromptReloadFunc
	logger  *errors.Logger
	running bool
}

// NewPromptWatcher creates a watcher for the given prompt files.
func NewPromptWatcher(files []string, debounceDelay time.Duration, reload PromptReloadFunc, logger *errors.Logger) *PromptWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	unique := make([]string, 0, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		if !slices.Contains(unique, abs) {
			unique = append(unique, abs)
		}
	}

	return &PromptWatcher{
		files:         unique,
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		timers:        make(map[string]*time.Timer),
		reloadChan:    make(chan string, len(unique)+1),
		reload:        reload,
		logger:        logger,
	}
}

// Start begins watching. Directories are watched too so editors that
// replace files by rename are noticed.
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}
	if len(pw.files) == 0 {
		return fmt.Errorf("no prompt files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher
	pw.stopChan = make(chan struct{})
	pw.timers = make(map[string]*time.Timer)

	for _, file := range pw.files {
		if stat, err := os.Stat(file); err == nil {
			pw.lastModTime[file] = stat.ModTime()
		}
	}

	dirs := make(map[string]bool)
	for _, file := range pw.files {
		dir := filepath.Dir(file)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := pw.fsWatcher.Add(dir); err != nil {
			pw.logger.Warn("Failed to watch prompt directory", "directory", dir, "error", err)
		}
	}

	pw.running = true
	go pw.watchLoop(watcher, pw.stopChan)

	pw.logger.Info("Prompt file watcher started",
		"files", pw.files,
		"debounce_delay", pw.debounceDelay)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	close(pw.stopChan)
	for _, t := range pw.timers {
		t.Stop()
	}
	pw.running = false

	if err := pw.fsWatcher.Close(); err != nil {
		pw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	pw.logger.Info("Prompt file watcher stopped")
	return nil
}

func (pw *PromptWatcher) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if file, ok := pw.watchedFile(event); ok {
				pw.scheduleReload(file)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			pw.logger.LogError(err, "File watcher error")

		case file := <-pw.reloadChan:
			if pw.hasFileChanged(file) {
				pw.logger.Info("Prompt file changed, reloading", "file", file)
				pw.reload(file)
			}

		case <-stop:
			return
		}
	}
}

// watchedFile maps an event to the prompt file it concerns.
func (pw *PromptWatcher) watchedFile(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return "", false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = event.Name
	}
	if slices.Contains(pw.files, name) {
		return name, true
	}
	return "", false
}

// hasFileChanged reports whether file has a newer mtime than last seen.
// A missing file counts as unchanged; the old prompt stays active.
func (pw *PromptWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		return false
	}

	pw.mu.Lock()
	defer pw.mu.Unlock()
	lastMod, exists := pw.lastModTime[file]
	if !exists || !stat.ModTime().Equal(lastMod) {
		pw.lastModTime[file] = stat.ModTime()
		return true
	}
	return false
}

// scheduleReload debounces bursts of events per file
func (pw *PromptWatcher) scheduleReload(file string) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if t, ok := pw.timers[file]; ok {
		t.Stop()
	}
	pw.timers[file] = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- file:
		default:
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (pw *PromptWatcher) IsRunning() bool {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.running
}

// WatchedFiles returns the absolute paths being watched
func (pw *PromptWatcher) WatchedFiles() []string {
	return slices.Clone(pw.files)
}
