package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"mercator-hq/gatekeep/pkg/rules/ast"
)

// Format is the encoding of a rules document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported rules format")

// Source kinds reported by Kind.
const (
	KindFile   = "file"
	KindGit    = "git"
	KindMemory = "memory"
)

// Source loads a rules configuration.
type Source interface {
	// Load reads and decodes the current configuration.
	Load(ctx context.Context) (*Document, error)

	// Kind names the source type ("file", "git", "memory").
	Kind() string

	// Describe returns a human-readable location for logs.
	Describe() string
}

// Refresher is implemented by sources whose content changes only after an
// explicit fetch.
type Refresher interface {
	// Refresh fetches upstream changes and reports whether the content
	// revision changed.
	Refresh(ctx context.Context) (bool, error)
}

// Document is a decoded rules configuration plus provenance.
type Document struct {
	Config   *ast.RulesConfig
	Body     []byte
	Format   Format
	Checksum string
	Revision string
	Origin   string
	LoadedAt time.Time
}

// FormatFromPath returns the format implied by a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes body in the given format.
func Parse(body []byte, format Format) (*ast.RulesConfig, error) {
	switch format {
	case FormatJSON:
		return ast.ParseJSON(body)
	case FormatYAML:
		return ast.ParseYAML(body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// NewDocument parses body and fills the checksum. Revision defaults to a
// checksum prefix.
func NewDocument(body []byte, format Format, origin string) (*Document, error) {
	cfg, err := Parse(body, format)
	if err != nil {
		return nil, err
	}
	sum := Checksum(body)
	return &Document{
		Config:   cfg,
		Body:     body,
		Format:   format,
		Checksum: sum,
		Revision: sum[:12],
		Origin:   origin,
		LoadedAt: time.Now(),
	}, nil
}

// Checksum returns the hex SHA-256 of body.
func Checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
