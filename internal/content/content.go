// Package content implements the loader collaborator used by the CLI: lesson
// artifacts stored as YAML files in a content directory, keyed by the
// descriptor name the registry resolves. The core never depends on this
// package; it only sees the injected function types.
package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"lessonforge/internal/registry"
)

// Lesson is one loaded content unit. Body is markdown rendered by the CLI.
type Lesson struct {
	ID          int      `yaml:"id"`
	Title       string   `yaml:"title"`
	Body        string   `yaml:"body"`
	Tags        []string `yaml:"tags"`
	Placeholder bool     `yaml:"-"`
}

// FileLoader reads lesson files from a directory tree. Descriptor names map
// to relative paths: "advanced/lesson_61" loads <dir>/advanced/lesson_61.yaml.
type FileLoader struct {
	dir    string
	logger *zap.Logger
}

// NewFileLoader creates a loader rooted at dir.
func NewFileLoader(dir string, logger *zap.Logger) *FileLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileLoader{dir: dir, logger: logger}
}

// Load reads and parses the lesson file for the descriptor.
func (l *FileLoader) Load(ctx context.Context, d registry.Descriptor) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.dir, filepath.FromSlash(d.Name)+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson %d (%s): %w", d.ID, d.Name, err)
	}

	var lesson Lesson
	if err := yaml.Unmarshal(data, &lesson); err != nil {
		return nil, fmt.Errorf("failed to parse lesson %d (%s): %w", d.ID, d.Name, err)
	}
	if lesson.ID == 0 {
		lesson.ID = d.ID
	}
	l.logger.Debug("lesson loaded from disk",
		zap.Int("lesson", d.ID),
		zap.String("path", path))
	return &lesson, nil
}

// Placeholder returns the artifact substituted when a lesson cannot be
// resolved or loaded. Callers detect degraded content via the Placeholder
// flag, not an error.
func Placeholder(id int) any {
	return &Lesson{
		ID:          id,
		Title:       fmt.Sprintf("Lesson %d (unavailable)", id),
		Body:        "# Content unavailable\n\nThis lesson could not be loaded. It may not be published yet.",
		Placeholder: true,
	}
}
