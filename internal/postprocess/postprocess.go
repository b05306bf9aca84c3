// Package postprocess applies variable substitution and block processors to
// rendered output.
//
// A block starts with a declaration line such as
//
//	[language, java, kotlin]
//
// followed either by a single line or by lines delimited with ----. Inside a
// delimited block, a nested delimiter is written as \----. The block is
// replaced by what the named processor returns. Declarations naming no
// registered processor are left alone, which keeps markup like [source,java]
// intact.
package postprocess

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

const blockDelimiter = "----"

var (
	declarationPattern = regexp.MustCompile(`^\[.+\]$`)
	lineBreak          = regexp.MustCompile(`\r?\n`)
)

// Processor rewrites the content of a block. lang is the name of the
// generator the content was rendered for.
type Processor interface {
	Name() string
	Process(lang, content string, args ...string) (string, error)
}

// Pipeline holds the substitution variables and the registered processors.
type Pipeline struct {
	mu         sync.RWMutex
	processors []Processor
	variables  map[string]string
}

// NewPipeline creates a pipeline with the language filter registered.
func NewPipeline(variables map[string]string) *Pipeline {
	p := &Pipeline{variables: make(map[string]string, len(variables))}
	for k, v := range variables {
		p.variables[k] = v
	}
	p.processors = append(p.processors, LanguageFilter{})
	return p
}

// SetVariable adds or replaces a substitution variable.
func (p *Pipeline) SetVariable(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.variables[key] = value
}

// Register adds a processor. Names are case insensitive and must be unique.
func (p *Pipeline) Register(proc Processor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lookup(proc.Name()) != nil {
		return errors.ValidationError("post-processor " + proc.Name() + " is already registered").Build()
	}
	p.processors = append(p.processors, proc)
	return nil
}

// Get returns the processor registered under name, or nil.
func (p *Pipeline) Get(name string) Processor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lookup(name)
}

func (p *Pipeline) lookup(name string) Processor {
	for _, proc := range p.processors {
		if strings.EqualFold(proc.Name(), name) {
			return proc
		}
	}
	return nil
}

// Apply substitutes variables, then runs block processors.
func (p *Pipeline) Apply(lang, content string) (string, error) {
	return p.ApplyProcessors(lang, p.Substitute(content))
}

// Substitute replaces every ${key} by its variable value.
func (p *Pipeline) Substitute(content string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.variables))
	for k := range p.variables {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		content = strings.ReplaceAll(content, "${"+k+"}", p.variables[k])
	}
	return content
}

// ApplyProcessors replaces every block whose declaration names a registered
// processor.
func (p *Pipeline) ApplyProcessors(lang, content string) (string, error) {
	lines := lineBreak.Split(content, -1)
	var out strings.Builder
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if !IsDeclaration(trimmed) {
			out.WriteString(line)
		} else if proc := p.Get(DeclarationName(trimmed)); proc == nil {
			out.WriteString(line)
		} else {
			block, next := BlockContent(lines, i+1)
			i = next - 1
			processed, err := proc.Process(lang, block, DeclarationArgs(trimmed)...)
			if err != nil {
				return "", err
			}
			out.WriteString(processed)
		}
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
	}
	return out.String(), nil
}

// IsDeclaration reports whether a trimmed line declares a block.
func IsDeclaration(line string) bool {
	return declarationPattern.MatchString(line)
}

// DeclarationName returns the processor name of a declaration line.
func DeclarationName(line string) string {
	inner := line[1 : len(line)-1]
	if i := strings.IndexByte(inner, ','); i >= 0 {
		inner = inner[:i]
	}
	return strings.TrimSpace(inner)
}

// DeclarationArgs returns the trimmed arguments following the processor name.
// Trailing empty arguments are dropped, except for a lone empty argument.
func DeclarationArgs(line string) []string {
	inner := line[1 : len(line)-1]
	i := strings.IndexByte(inner, ',')
	if i < 0 {
		return nil
	}
	rest := inner[i+1:]
	if rest == "" {
		return []string{""}
	}
	parts := strings.Split(rest, ",")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for j := range parts {
		parts[j] = strings.TrimSpace(parts[j])
	}
	return parts
}

// BlockContent reads the block starting at lines[from] and returns its content
// and the index of the first line after it. A block not opened by a delimiter
// is a single line. Block lines are trimmed.
func BlockContent(lines []string, from int) (string, int) {
	var sb strings.Builder
	started := false
	i := from
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case !started && line == blockDelimiter:
			started = true
		case !started:
			return line, i + 1
		case line == `\`+blockDelimiter:
			sb.WriteString(blockDelimiter + "\n")
		case line == blockDelimiter:
			return sb.String(), i + 1
		default:
			sb.WriteString(line + "\n")
		}
	}
	return sb.String(), i
}

// LanguageFilter keeps a block only when one of its arguments names the
// current language.
type LanguageFilter struct{}

func (LanguageFilter) Name() string { return "language" }

func (f LanguageFilter) Process(lang, content string, args ...string) (string, error) {
	if len(args) == 0 {
		return "", errors.ValidationError("the post-processor '" + f.Name() + "' requires at least one argument").Build()
	}
	for _, a := range args {
		if strings.EqualFold(lang, a) {
			return content, nil
		}
	}
	return "", nil
}
