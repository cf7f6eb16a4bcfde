package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// FileSource loads rules from a single JSON or YAML file.
type FileSource struct {
	path   string
	format Format
	logger *slog.Logger
}

// NewFileSource creates a file source. The format is taken from the
// extension.
func NewFileSource(path string, logger *slog.Logger) (*FileSource, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		format: format,
		logger: logger,
	}, nil
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %q: %w", s.path, err)
	}

	doc, err := NewDocument(body, s.format, s.path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	s.logger.Debug("loaded rules file",
		"path", s.path,
		"version", doc.Config.Version,
		"rule_count", len(doc.Config.Rules),
	)
	return doc, nil
}

// Path returns the file path.
func (s *FileSource) Path() string {
	return s.path
}

// Kind implements Source.
func (s *FileSource) Kind() string {
	return KindFile
}

// Describe implements Source.
func (s *FileSource) Describe() string {
	return "file:" + s.path
}
