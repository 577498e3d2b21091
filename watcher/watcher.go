// Package watcher reloads a shader file from disk whenever it changes.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/richinsley/shaderplayer/diagnostics"
)

// Sink receives the new shader source.
type Sink interface {
	SetFragmentShader(source string)
}

// Watcher feeds the contents of one file into a Sink.
type Watcher struct {
	path    string
	sink    Sink
	diag    diagnostics.Publisher
	watcher *fsnotify.Watcher
}

// New watches the directory containing path, since editors often replace
// files by renaming over them.
func New(path string, sink Sink, diag diagnostics.Publisher) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{path: abs, sink: sink, diag: diag, watcher: fw}, nil
}

// Load reads the file once and hands it to the sink.
func (w *Watcher) Load() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to read shader: %w", err)
	}
	w.sink.SetFragmentShader(string(data))
	return nil
}

// Run delivers changes until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Printf("Shader file changed: %s", w.path)
			if err := w.Load(); err != nil {
				diagnostics.Publishf(w.diag, diagnostics.KindInput, "%v", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			diagnostics.Publishf(w.diag, diagnostics.KindInput, "File watcher error: %v", err)
		}
	}
}
