package source

import (
	"context"
	"sync"
)

// MemorySource serves a document held in memory.
type MemorySource struct {
	mu  sync.RWMutex
	doc *Document
	err error
}

// NewMemorySource parses body and serves it.
func NewMemorySource(body []byte, format Format) (*MemorySource, error) {
	s := &MemorySource{}
	if err := s.Set(body, format); err != nil {
		return nil, err
	}
	return s, nil
}

// Set replaces the served document.
func (s *MemorySource) Set(body []byte, format Format) error {
	doc, err := NewDocument(body, format, KindMemory)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = doc
	s.err = nil
	s.mu.Unlock()
	return nil
}

// Fail makes subsequent loads return err until the next Set.
func (s *MemorySource) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Load implements Source. The returned document is a copy.
func (s *MemorySource) Load(ctx context.Context) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	// Re-parse so callers never share a configuration.
	return NewDocument(s.doc.Body, s.doc.Format, KindMemory)
}

// Kind implements Source.
func (s *MemorySource) Kind() string {
	return KindMemory
}

// Describe implements Source.
func (s *MemorySource) Describe() string {
	return "memory"
}
