package render

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/docwriter"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/generator"
)

var (
	fileLinkPattern = regexp.MustCompile(`\{@link\s([^}]+)\}`)
	// a qualified name with an optional #member and parameter list
	fileSignaturePattern = regexp.MustCompile(`^(?:[$_\w]+\.)*[$_\w]+(#[$_\w]+(\([^)]*\))?)?`)
)

func (r *Renderer) renderFile(gen generator.Generator, doc *FileDocument, w *docwriter.Writer) error {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return errors.ReadFailure("cannot read document").
			WithCause(err).
			WithContext("path", doc.Path).
			Build()
	}
	var sb strings.Builder
	filterLang(&sb, string(data), gen.Name())
	content := sb.String()

	// file content is markup already; only links are normalized
	w.LiteralMode()
	s := scope{gen: gen, origin: doc.ID()}
	prev := 0
	for _, m := range fileLinkPattern.FindAllStringSubmatchIndex(content, -1) {
		_, _ = w.WriteString(content[prev:m[0]])
		prev = m[1]
		value := strings.TrimSpace(content[m[2]:m[3]])
		end := signatureEnd(value)
		if end < 0 {
			continue
		}
		sig, label := value[:end], strings.TrimSpace(value[end:])
		w.Exec(func() { r.link(s, sig, label, w) })
	}
	_, _ = w.WriteString(content[prev:])
	return nil
}

// signatureEnd returns the length of the signature at the start of value, or
// -1 when value does not start with one. A member without parameters must be
// followed by a space or the end of value; otherwise only the type is taken.
func signatureEnd(value string) int {
	m := fileSignaturePattern.FindStringSubmatchIndex(value)
	if m == nil {
		return -1
	}
	end := m[1]
	if m[2] >= 0 && m[4] < 0 && end < len(value) && value[end] != ' ' {
		return m[2]
	}
	return end
}

// DiscoverFiles returns one document per file named by sources. A source is
// a file, a directory walked recursively, or a glob pattern. Output paths are
// relative to the directory or glob base.
func DiscoverFiles(sources []string) ([]Document, error) {
	var docs []Document
	seen := make(map[string]bool)
	add := func(path, rel string) {
		rel = filepath.ToSlash(rel)
		if seen[rel] {
			return
		}
		seen[rel] = true
		docs = append(docs, &FileDocument{Path: path, RelativePath: rel})
	}

	for _, src := range sources {
		if strings.ContainsAny(src, "*?[") {
			matches, err := filepath.Glob(src)
			if err != nil {
				return nil, errors.ConfigError("invalid source pattern").
					WithCause(err).
					WithContext("path", src).
					Build()
			}
			slices.Sort(matches)
			base := globBase(src)
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
					rel, err := filepath.Rel(base, m)
					if err != nil {
						rel = filepath.Base(m)
					}
					add(m, rel)
				}
			}
			continue
		}

		info, err := os.Stat(src)
		if err != nil {
			return nil, errors.ReadFailure("cannot access source").
				WithCause(err).
				WithContext("path", src).
				Build()
		}
		if !info.IsDir() {
			add(src, filepath.Base(src))
			continue
		}
		err = filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != src && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			add(path, rel)
			return nil
		})
		if err != nil {
			return nil, errors.FileSystemError("cannot walk source directory").
				WithCause(err).
				WithContext("path", src).
				Build()
		}
	}
	return docs, nil
}

// globBase is the longest leading directory of pattern without meta characters.
func globBase(pattern string) string {
	dir := filepath.Dir(pattern)
	for strings.ContainsAny(dir, "*?[") {
		dir = filepath.Dir(dir)
	}
	return dir
}

// SourceRoots returns the paths to observe for changes to sources. A glob is
// replaced by its leading directory.
func SourceRoots(sources []string) []string {
	roots := make([]string, 0, len(sources))
	for _, src := range sources {
		if strings.ContainsAny(src, "*?[") {
			src = globBase(src)
		}
		roots = append(roots, src)
	}
	return roots
}
