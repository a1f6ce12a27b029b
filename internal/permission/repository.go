package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oakline/planboard/internal/logger"
)

// Replacer receives a freshly loaded permission document.
type Replacer interface {
	Replace(doc Document)
}

// Repository handles disk persistence and watching of the permission file.
type Repository struct {
	path string
	dir  string
	base string
	mu   sync.Mutex
}

// NewRepository creates a repository for the given JSON file path.
func NewRepository(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("permission file path is required")
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "" {
		dir = "."
	}
	return &Repository{path: path, dir: dir, base: base}, nil
}

// Load reads and validates the permission file.
func (r *Repository) Load() (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open permission file: %w", err)
	}
	defer file.Close()

	var doc Document
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode permission file: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, fmt.Errorf("validate permission file: %w", err)
	}
	return doc, nil
}

// Save writes the document atomically (temp file + rename).
func (r *Repository) Save(doc Document) error {
	if err := validate(doc); err != nil {
		return fmt.Errorf("validate before save: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}

	tmpFile, err := os.CreateTemp(r.dir, r.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), r.path); err != nil {
		return fmt.Errorf("replace permission file: %w", err)
	}
	return nil
}

// StartWatcher reloads the permission map into the holder when the file
// changes. It watches the parent directory so atomic replace sequences
// (temp+rename) are still observed, filters by basename, and debounces bursty
// write+chmod/rename cycles into one reload. Cancel the context to stop it.
func (r *Repository) StartWatcher(ctx context.Context, holder Replacer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	onChange := func() {
		doc, err := r.Load()
		if err != nil {
			logger.WithComponent("permissions").Errorf("watch reload failed: %v", err)
			return
		}
		holder.Replace(doc)
		logger.WithComponent("permissions").Info("permission map reloaded from disk")
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		schedule := func() {
			if debounce != nil {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
			}
			debounce = time.AfterFunc(200*time.Millisecond, onChange)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != r.base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Remove|fsnotify.Rename) != 0 {
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithComponent("permissions").Errorf("watcher error: %v", err)
			}
		}
	}()

	return nil
}

// validate rejects structurally broken documents: empty brand or format keys
// would make items unmatchable.
func validate(doc Document) error {
	for brand, formats := range doc {
		if brand == "" {
			return errors.New("empty brand name key")
		}
		for format := range formats {
			if format == "" {
				return fmt.Errorf("brand %s has an empty format key", brand)
			}
		}
	}
	return nil
}
