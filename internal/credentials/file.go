package credentials

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// FileSource reads the API key from a file and, with RefreshWatch, reloads
// it whenever the file is rewritten
type FileSource struct {
	mu     sync.RWMutex
	path   string
	key    string
	policy RefreshPolicy

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	reloadChan    chan struct{}
	stopChan      chan struct{}
	running       bool

	logger *errors.Logger
}

// NewFileSource reads the key file and starts watching it when policy is
// RefreshWatch
func NewFileSource(path string, policy RefreshPolicy, debounceDelay time.Duration, logger *errors.Logger) (*FileSource, error) {
	if policy != RefreshNone && policy != RefreshWatch {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("file credentials do not support refresh policy %q", policy), nil)
	}
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	fs := &FileSource{
		path:          path,
		policy:        policy,
		debounceDelay: debounceDelay,
		reloadChan:    make(chan struct{}, 1),
		stopChan:      make(chan struct{}),
		logger:        logger,
	}

	key, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	fs.key = key

	if policy == RefreshWatch {
		if err := fs.start(); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func readKeyFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to read API key file", err).WithContext("file", path)
	}
	key := strings.TrimSpace(string(content))
	if key == "" {
		return "", errors.NewValidationError(errors.ErrCodeMissingAPIKey,
			"API key file is empty", nil).WithContext("file", path)
	}
	return key, nil
}

func (fs *FileSource) APIKey(ctx context.Context) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.key, nil
}

func (fs *FileSource) Policy() RefreshPolicy { return fs.policy }

// reload re-reads the key file. An unreadable or empty file keeps the
// previous key.
func (fs *FileSource) reload() bool {
	key, err := readKeyFile(fs.path)
	if err != nil {
		if fs.logger != nil {
			fs.logger.LogError(err, "Keeping previous API key after failed reload")
		}
		return false
	}

	fs.mu.Lock()
	changed := key != fs.key
	fs.key = key
	fs.mu.Unlock()

	if changed && fs.logger != nil {
		fs.logger.Info("API key reloaded from file",
			"file", fs.path,
			"masked_key", config.MaskSecret(key))
	}
	return changed
}

func (fs *FileSource) start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// watch the directory so atomic rename-over writes are seen
	if err := watcher.Add(filepath.Dir(fs.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory of %s: %w", fs.path, err)
	}

	fs.mu.Lock()
	fs.fsWatcher = watcher
	fs.running = true
	fs.mu.Unlock()

	go fs.watchLoop()

	if fs.logger != nil {
		fs.logger.Info("API key file watcher started",
			"file", fs.path,
			"debounce_delay", fs.debounceDelay)
	}
	return nil
}

func (fs *FileSource) watchLoop() {
	for {
		select {
		case event, ok := <-fs.fsWatcher.Events:
			if !ok {
				return
			}
			if fs.shouldProcessEvent(event) {
				fs.scheduleReload()
			}

		case err, ok := <-fs.fsWatcher.Errors:
			if !ok {
				return
			}
			if fs.logger != nil {
				fs.logger.LogError(err, "API key file watcher error")
			}

		case <-fs.reloadChan:
			fs.reload()

		case <-fs.stopChan:
			return
		}
	}
}

func (fs *FileSource) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(fs.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (fs *FileSource) scheduleReload() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.debounceTimer != nil {
		fs.debounceTimer.Stop()
	}
	fs.debounceTimer = time.AfterFunc(fs.debounceDelay, func() {
		select {
		case fs.reloadChan <- struct{}{}:
		default:
		}
	})
}

// Close stops the watcher if one is running
func (fs *FileSource) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.running {
		return nil
	}
	close(fs.stopChan)
	if fs.debounceTimer != nil {
		fs.debounceTimer.Stop()
	}
	fs.running = false
	return fs.fsWatcher.Close()
}
