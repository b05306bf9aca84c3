package model

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docgen/internal/doccomment"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// fileModel is the on-disk form of one pass worth of symbols. JSON files are
// accepted as well since they parse as YAML.
type fileModel struct {
	Coordinate *Coordinate    `yaml:"coordinate"`
	Packages   []packageModel `yaml:"packages"`
	Types      []typeModel    `yaml:"types"`
}

type packageModel struct {
	Name     string         `yaml:"name"`
	Doc      string         `yaml:"doc"`
	Document *documentModel `yaml:"document"`
	Source   *sourceModel   `yaml:"source"`
	Example  bool           `yaml:"example"`
}

type documentModel struct {
	FileName string `yaml:"file_name"`
}

type sourceModel struct {
	Translate *bool `yaml:"translate"`
}

type lineRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

type typeModel struct {
	Name       string        `yaml:"name"`
	Package    string        `yaml:"package"`
	Kind       string        `yaml:"kind"`
	File       string        `yaml:"file"`
	Imports    []string      `yaml:"imports"`
	Modifiers  []string      `yaml:"modifiers"`
	Supertypes []string      `yaml:"supertypes"`
	Doc        string        `yaml:"doc"`
	Example    bool          `yaml:"example"`
	Source     *sourceModel  `yaml:"source"`
	Span       *Span         `yaml:"span"`
	Lines      *lineRange    `yaml:"lines"`
	Coordinate *Coordinate   `yaml:"coordinate"`
	Members    []memberModel `yaml:"members"`
	Types      []typeModel   `yaml:"types"`
}

type memberModel struct {
	Name           string       `yaml:"name"`
	Kind           string       `yaml:"kind"`
	Params         []string     `yaml:"params"`
	Modifiers      []string     `yaml:"modifiers"`
	Doc            string       `yaml:"doc"`
	Example        bool         `yaml:"example"`
	Source         *sourceModel `yaml:"source"`
	Statements     []Span       `yaml:"statements"`
	StatementLines []lineRange  `yaml:"statement_lines"`
}

// LoadFile reads a model file into a new Table. Source paths are resolved
// relative to the directory of the model file.
func LoadFile(path string) (*Table, error) {
	// #nosec G304 -- model paths are user supplied configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read model file").
			WithContext("path", path).
			Build()
	}
	return Load(data, filepath.Dir(path))
}

// Load parses model data. baseDir anchors relative source file paths.
func Load(data []byte, baseDir string) (*Table, error) {
	var fm fileModel
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse model").Build()
	}
	l := &loader{baseDir: baseDir, table: NewTable(), coord: fm.Coordinate}

	for _, pm := range fm.Packages {
		if err := l.table.Add(l.packageElement(pm)); err != nil {
			return nil, err
		}
	}
	for _, tm := range fm.Types {
		el, err := l.typeElement(tm, tm.Package, nil)
		if err != nil {
			return nil, err
		}
		if err := l.table.Add(el); err != nil {
			return nil, err
		}
	}
	return l.table, nil
}

type loader struct {
	baseDir string
	table   *Table
	coord   *Coordinate
	texts   map[string]string
}

func (l *loader) packageElement(pm packageModel) *Element {
	el := &Element{
		Name:          simpleName(pm.Name),
		QualifiedName: pm.Name,
		Kind:          KindPackage,
		Example:       pm.Example,
		Source:        pm.Source.scope(),
		Coordinate:    l.coord,
	}
	if pm.Document != nil {
		el.Document = &DocumentInfo{FileName: pm.Document.FileName}
	}
	if strings.TrimSpace(pm.Doc) != "" {
		el.Doc = doccomment.Parse(pm.Doc)
	}
	return el
}

func (l *loader) typeElement(tm typeModel, pkg string, outer *Element) (*Element, error) {
	kind := Kind(tm.Kind)
	if tm.Kind == "" {
		kind = KindClass
	}
	if !kind.IsType() {
		return nil, errors.ValidationError("invalid type kind "+tm.Kind).
			WithContext("type", tm.Name).
			Build()
	}

	qualified := tm.Name
	switch {
	case outer != nil:
		qualified = outer.QualifiedName + "." + tm.Name
	case pkg != "":
		qualified = pkg + "." + tm.Name
	}
	el := &Element{
		Name:          tm.Name,
		QualifiedName: qualified,
		Kind:          kind,
		Modifiers:     tm.Modifiers,
		Supertypes:    tm.Supertypes,
		Example:       tm.Example,
		Source:        tm.Source.scope(),
		Coordinate:    tm.Coordinate,
	}
	if el.Coordinate == nil && outer == nil {
		el.Coordinate = l.coord
	}
	if strings.TrimSpace(tm.Doc) != "" {
		el.Doc = doccomment.Parse(tm.Doc)
	}
	if tm.File != "" {
		el.Unit = &CompilationUnit{
			Path:    l.resolvePath(tm.File),
			Package: pkg,
			Imports: tm.Imports,
		}
	}
	if tm.Span != nil {
		el.Span = *tm.Span
	}
	if tm.Lines != nil {
		span, err := l.lineSpan(el, *tm.Lines)
		if err != nil {
			return nil, err
		}
		el.Span = span
	}

	for _, mm := range tm.Members {
		member, err := l.memberElement(mm, el)
		if err != nil {
			return nil, err
		}
		el.Members = append(el.Members, member)
	}
	for _, nested := range tm.Types {
		child, err := l.typeElement(nested, pkg, el)
		if err != nil {
			return nil, err
		}
		el.Members = append(el.Members, child)
	}
	return el, nil
}

func (l *loader) memberElement(mm memberModel, owner *Element) (*Element, error) {
	kind := Kind(mm.Kind)
	if !kind.IsExecutable() && !kind.IsVariable() {
		return nil, errors.ValidationError("invalid member kind "+mm.Kind).
			WithContext("type", owner.QualifiedName).
			WithContext("member", mm.Name).
			Build()
	}
	name := mm.Name
	if kind == KindConstructor && name == "" {
		name = owner.Name
	}
	el := &Element{
		Name:          name,
		QualifiedName: owner.QualifiedName + "#" + name,
		Kind:          kind,
		Owner:         owner,
		Modifiers:     mm.Modifiers,
		Params:        mm.Params,
		Example:       mm.Example,
		Source:        mm.Source.scope(),
		Statements:    mm.Statements,
	}
	if strings.TrimSpace(mm.Doc) != "" {
		el.Doc = doccomment.Parse(mm.Doc)
	}
	for _, lr := range mm.StatementLines {
		span, err := l.lineSpan(el, lr)
		if err != nil {
			return nil, err
		}
		el.Statements = append(el.Statements, span)
	}
	return el, nil
}

// lineSpan converts a 1-based inclusive line range into a span starting at the
// first non-blank character of the first line and ending at the end of the last.
func (l *loader) lineSpan(el *Element, lr lineRange) (Span, error) {
	unit := el.CompilationUnit()
	if unit == nil {
		return Span{}, errors.ValidationError("line ranges need a source file").
			WithContext("element", el.String()).
			Build()
	}
	text, err := l.text(unit.Path)
	if err != nil {
		return Span{}, err
	}
	to := lr.To
	if to == 0 {
		to = lr.From
	}
	start, ok := lineOffset(text, lr.From)
	if !ok || to < lr.From {
		return Span{}, errors.ValidationError("line range out of bounds").
			WithContext("element", el.String()).
			WithContext("from", lr.From).
			WithContext("to", to).
			Build()
	}
	lastStart, ok := lineOffset(text, to)
	if !ok {
		return Span{}, errors.ValidationError("line range out of bounds").
			WithContext("element", el.String()).
			WithContext("to", to).
			Build()
	}
	end := len(text)
	if i := strings.IndexByte(text[lastStart:], '\n'); i >= 0 {
		end = lastStart + i
	}
	for start < end && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	return Span{Start: start, End: end}, nil
}

func (l *loader) text(path string) (string, error) {
	if l.texts == nil {
		l.texts = make(map[string]string)
	}
	if t, ok := l.texts[path]; ok {
		return t, nil
	}
	// #nosec G304 -- source paths come from the model file.
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.ReadFailure("failed to read source file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	l.texts[path] = string(data)
	return string(data), nil
}

func (l *loader) resolvePath(p string) string {
	if filepath.IsAbs(p) || l.baseDir == "" {
		return p
	}
	return filepath.Join(l.baseDir, p)
}

func (s *sourceModel) scope() *SourceScope {
	if s == nil {
		return nil
	}
	translate := true
	if s.Translate != nil {
		translate = *s.Translate
	}
	return &SourceScope{Translate: translate}
}

// lineOffset returns the byte offset at which 1-based line n starts.
func lineOffset(text string, n int) (int, bool) {
	if n < 1 {
		return 0, false
	}
	off := 0
	for line := 1; line < n; line++ {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return 0, false
		}
		off += i + 1
	}
	return off, true
}
