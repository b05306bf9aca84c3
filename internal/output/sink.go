// Package output writes rendered documents.
package output

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/frontmatter"
)

// LangPlaceholder is replaced by the generator name in output directories.
const LangPlaceholder = "$lang"

// Sink receives the final content of a document for one generator.
type Sink interface {
	// Write stores content under relPath for generator lang and returns
	// where it was written.
	Write(lang, relPath, content string) (string, error)
}

// FileSink writes documents below a directory template containing $lang.
type FileSink struct {
	dir string
}

// NewFileSink creates a sink writing below dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Dir returns the output directory for generator lang.
func (s *FileSink) Dir(lang string) string {
	return strings.ReplaceAll(s.dir, LangPlaceholder, lang)
}

func (s *FileSink) Write(lang, relPath, content string) (string, error) {
	dir := s.Dir(lang)
	full, err := SafeJoin(dir, relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", errors.FileSystemError("create output directory").
			WithCause(err).
			WithContext("path", filepath.Dir(full)).
			Build()
	}
	// #nosec G306 -- generated documentation is meant to be readable.
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return "", errors.FileSystemError("write output file").
			WithCause(err).
			WithContext("path", full).
			Build()
	}
	return full, nil
}

// SafeJoin joins dir and a slash separated relative path, rejecting paths
// that would escape dir.
func SafeJoin(dir, relPath string) (string, error) {
	if relPath == "" {
		return "", errors.ValidationError("output path is required").Build()
	}
	cleanRel := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", errors.ValidationError("output path must be relative to the output directory").
			WithContext("path", relPath).
			Build()
	}
	full := filepath.Join(dir, cleanRel)
	rel, err := filepath.Rel(dir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.ValidationError("output path escapes the output directory").
			WithContext("path", relPath).
			Build()
	}
	return full, nil
}

// MemorySink keeps documents in memory, keyed by "lang/relPath".
type MemorySink struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string]string)}
}

func (s *MemorySink) Write(lang, relPath, content string) (string, error) {
	key := lang + "/" + relPath
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = content
	return key, nil
}

// Get returns the content written for lang and relPath.
func (s *MemorySink) Get(lang, relPath string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.files[lang+"/"+relPath]
	return c, ok
}

// Keys returns the written keys in sorted order.
func (s *MemorySink) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FingerprintSink stamps every document with a content fingerprint before
// passing it on. Use it for markdown output only.
type FingerprintSink struct {
	Next Sink
}

func (s FingerprintSink) Write(lang, relPath, content string) (string, error) {
	stamped, err := frontmatter.Stamp(content)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryValidation, "cannot fingerprint document").
			WithContext("path", relPath).
			Build()
	}
	return s.Next.Write(lang, relPath, stamped)
}
