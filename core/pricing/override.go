package pricing

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type overrideFile struct {
	Models []ModelProfile `yaml:"models"`
}

// LoadOverride replaces the table contents from a YAML pricing file.
func (t *Table) LoadOverride(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pricing override: %w", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse pricing override %s: %w", path, err)
	}
	if len(file.Models) == 0 {
		return fmt.Errorf("pricing override %s contains no models", path)
	}

	t.Replace(file.Models)
	t.logger.Info("pricing table replaced from override", "path", path, "models", len(file.Models))
	return nil
}

// Watch reloads the override file whenever it changes. Pricing updates are
// an operational task; a broken override logs and keeps the previous table.
// The returned stop function releases the watcher.
func (t *Table) Watch(path string, logger *slog.Logger) (stop func(), err error) {
	if logger == nil {
		logger = t.logger
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("pricing watcher: %w", err)
	}

	// Watch the directory: editors replace files, which drops a watch on
	// the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("pricing watcher add: %w", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := t.LoadOverride(path); err != nil {
					logger.Warn("pricing override reload failed, keeping previous table", "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("pricing watcher error", "error", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
