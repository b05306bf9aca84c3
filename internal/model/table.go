package model

import (
	"os"
	"strings"
	"sync"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// SymbolTable is the lookup surface the resolver and renderer depend on.
type SymbolTable interface {
	LookupType(qualifiedName string) (*Element, bool)
	LookupPackage(name string) (*Element, bool)
	// AllMembers returns the declared members of t followed by the members it
	// inherits from its supertypes. Constructors are not inherited.
	AllMembers(t *Element) []*Element
	// ReadSource returns the full text of the compilation unit declaring e.
	ReadSource(e *Element) (string, error)
}

// Table is an in-memory SymbolTable. It is grown pass by pass with Add or Merge.
type Table struct {
	types    map[string]*Element
	packages map[string]*Element
	order    []*Element

	mu      sync.Mutex
	sources map[string]string
}

var _ SymbolTable = (*Table)(nil)

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		types:    make(map[string]*Element),
		packages: make(map[string]*Element),
		sources:  make(map[string]string),
	}
}

// Add registers a package or a type together with its nested types. Members get
// their Owner set. A top-level type is owned by its package, which is created
// implicitly when it has not been added yet.
func (t *Table) Add(e *Element) error {
	if e == nil || e.QualifiedName == "" {
		return errors.ValidationError("element without qualified name").Build()
	}
	switch {
	case e.Kind == KindPackage:
		return t.addPackage(e)
	case e.Kind.IsType():
		if e.Owner == nil {
			pkg := e.PackageName()
			if pkg == "" {
				pkg = packageOf(e.QualifiedName)
			}
			if pkg != "" {
				e.Owner = t.ensurePackage(pkg)
			}
		}
		return t.addType(e)
	default:
		return errors.ValidationError("only packages and types can be added to a table").
			WithContext("element", e.QualifiedName).
			WithContext("kind", string(e.Kind)).
			Build()
	}
}

func (t *Table) addPackage(e *Element) error {
	if existing, ok := t.packages[e.QualifiedName]; ok {
		if !existing.implicit {
			return errors.ValidationError("duplicate package " + e.QualifiedName).Build()
		}
		// Upgrade the placeholder in place so types already owned by it see the documentation.
		existing.Doc = e.Doc
		existing.Document = e.Document
		existing.Source = e.Source
		existing.Example = e.Example
		existing.Coordinate = e.Coordinate
		existing.implicit = false
		return nil
	}
	if e.Name == "" {
		e.Name = simpleName(e.QualifiedName)
	}
	t.packages[e.QualifiedName] = e
	t.order = append(t.order, e)
	return nil
}

func (t *Table) ensurePackage(name string) *Element {
	if pkg, ok := t.packages[name]; ok {
		return pkg
	}
	pkg := &Element{Name: simpleName(name), QualifiedName: name, Kind: KindPackage, implicit: true}
	t.packages[name] = pkg
	t.order = append(t.order, pkg)
	return pkg
}

func (t *Table) addType(e *Element) error {
	if _, dup := t.types[e.QualifiedName]; dup {
		return errors.ValidationError("duplicate type " + e.QualifiedName).Build()
	}
	if e.Name == "" {
		e.Name = simpleName(e.QualifiedName)
	}
	t.types[e.QualifiedName] = e
	t.order = append(t.order, e)
	for _, m := range e.Members {
		m.Owner = e
		if m.Kind.IsType() {
			if m.QualifiedName == "" {
				m.QualifiedName = e.QualifiedName + "." + m.Name
			}
			if err := t.addType(m); err != nil {
				return err
			}
			continue
		}
		if m.QualifiedName == "" {
			m.QualifiedName = e.QualifiedName + "#" + m.Name
		}
	}
	return nil
}

// Merge adds every package and type of other that t does not know yet.
func (t *Table) Merge(other *Table) error {
	for _, e := range other.order {
		switch {
		case e.Kind == KindPackage:
			if existing, ok := t.packages[e.QualifiedName]; ok && (e.implicit || !existing.implicit) {
				continue
			}
			if err := t.addPackage(e); err != nil {
				return err
			}
		case e.Owner != nil && e.Owner.Kind.IsType():
			// Nested types come in with their outer type.
		default:
			if _, ok := t.types[e.QualifiedName]; ok {
				continue
			}
			if pkg := e.PackageName(); pkg != "" {
				e.Owner = t.ensurePackage(pkg)
			}
			if err := t.addType(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Table) LookupType(qualifiedName string) (*Element, bool) {
	e, ok := t.types[qualifiedName]
	return e, ok
}

func (t *Table) LookupPackage(name string) (*Element, bool) {
	e, ok := t.packages[name]
	return e, ok
}

// Packages returns the packages in the order they were added.
func (t *Table) Packages() []*Element {
	var out []*Element
	for _, e := range t.order {
		if e.Kind == KindPackage {
			out = append(out, e)
		}
	}
	return out
}

// Types returns the types in the order they were added.
func (t *Table) Types() []*Element {
	var out []*Element
	for _, e := range t.order {
		if e.Kind.IsType() {
			out = append(out, e)
		}
	}
	return out
}

func (t *Table) AllMembers(typ *Element) []*Element {
	var out []*Element
	seen := make(map[*Element]bool)
	var visit func(cur *Element, inherited bool)
	visit = func(cur *Element, inherited bool) {
		if cur == nil || seen[cur] {
			return
		}
		seen[cur] = true
		for _, m := range cur.Members {
			if inherited && (m.Kind == KindConstructor || m.HasModifier("private")) {
				continue
			}
			out = append(out, m)
		}
		for _, super := range cur.Supertypes {
			if st, ok := t.types[eraseGenerics(super)]; ok {
				visit(st, true)
			}
		}
	}
	visit(typ, false)
	return out
}

func (t *Table) ReadSource(e *Element) (string, error) {
	unit := e.CompilationUnit()
	if unit == nil {
		return "", errors.ReadFailure("no compilation unit for " + e.String()).Build()
	}
	if unit.Text != "" {
		return unit.Text, nil
	}
	if unit.Path == "" {
		return "", errors.ReadFailure("compilation unit without path for " + e.String()).Build()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if text, ok := t.sources[unit.Path]; ok {
		return text, nil
	}
	// #nosec G304 -- paths come from the model files the user configured.
	data, err := os.ReadFile(unit.Path)
	if err != nil {
		return "", errors.ReadFailure("failed to read source of "+e.String()).
			WithCause(err).
			WithContext("path", unit.Path).
			Build()
	}
	t.sources[unit.Path] = string(data)
	return string(data), nil
}

func simpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func packageOf(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[:i]
	}
	return ""
}

func eraseGenerics(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}
