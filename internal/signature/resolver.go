package signature

import (
	"errors"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/model"
)

// ErrNotFound reports a signature that matches no element of the table.
var ErrNotFound = errors.New("element not found")

// DefaultNamespace is the package unqualified class names fall back to.
const DefaultNamespace = "java.lang"

var primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true, "void": true,
}

// memberPriority fixes which element wins when several members share a name.
var memberPriority = []model.Kind{
	model.KindField,
	model.KindEnumConstant,
	model.KindConstructor,
	model.KindMethod,
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaultNamespace sets the package unqualified class names default to.
func WithDefaultNamespace(ns string) Option {
	return func(r *Resolver) { r.defaultNamespace = ns }
}

// Resolver maps signatures to elements.
type Resolver struct {
	table            model.SymbolTable
	defaultNamespace string
}

// New creates a resolver over table.
func New(table model.SymbolTable, opts ...Option) *Resolver {
	r := &Resolver{table: table, defaultNamespace: DefaultNamespace}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the element named by sig. Any signature that matches nothing,
// including one that cannot be parsed, yields ErrNotFound.
func (r *Resolver) Resolve(sig string) (*model.Element, error) {
	ref, err := Parse(sig)
	if err != nil {
		return nil, ErrNotFound
	}
	if !ref.HasMember {
		if t, ok := r.table.LookupType(ref.Type); ok {
			return t, nil
		}
		if p, ok := r.table.LookupPackage(ref.Type); ok {
			return p, nil
		}
		return nil, ErrNotFound
	}

	owner, ok := r.table.LookupType(ref.Type)
	if !ok {
		return nil, ErrNotFound
	}
	var expected []string
	if ref.HasParens {
		expected = make([]string, len(ref.Params))
		for i, p := range ref.Params {
			expected[i] = erase(p)
			if expected[i] == "" {
				// Unparsable parameter types never match.
				return nil, ErrNotFound
			}
		}
	}

	members := r.table.AllMembers(owner)
	for _, kind := range memberPriority {
		for _, m := range members {
			if m.Kind == kind && r.matches(ref, expected, owner, m) {
				return m, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (r *Resolver) matches(ref Ref, expected []string, owner, m *model.Element) bool {
	switch {
	case m.Kind.IsVariable():
		return !ref.HasParens && m.Name == ref.Member
	case m.Kind == model.KindConstructor:
		if ref.Member != owner.Name || m.Owner != owner {
			return false
		}
	case m.Kind == model.KindMethod:
		if m.Name != ref.Member {
			return false
		}
	default:
		return false
	}
	if !ref.HasParens {
		return true
	}
	if len(m.Params) != len(expected) {
		return false
	}
	for i, want := range expected {
		have := erase(m.Params[i])
		if have == "" || !r.sameType(want, owner, have, m) {
			return false
		}
	}
	return true
}

// sameType compares an expected parameter type, written in the context of the
// referenced owner, with a declared one, written in the context of the member.
// When either side could only be defaulted, simple names decide.
func (r *Resolver) sameType(want string, wantCtx *model.Element, have string, haveCtx *model.Element) bool {
	wantName, wantCertain := r.qualify(want, wantCtx)
	haveName, haveCertain := r.qualify(have, haveCtx)
	if wantName == haveName {
		return true
	}
	if wantCertain && haveCertain {
		return false
	}
	return simpleName(want) == simpleName(have)
}

// qualify resolves a type name against primitives, arrays, imports, nested
// types and the element's own package. Names found nowhere are placed in the
// default namespace and reported as uncertain.
func (r *Resolver) qualify(name string, ctx *model.Element) (string, bool) {
	if strings.HasSuffix(name, "[]") {
		inner, certain := r.qualify(strings.TrimSuffix(name, "[]"), ctx)
		return inner + "[]", certain
	}
	if primitives[name] || isQualified(name) {
		return name, true
	}
	if unit := ctx.CompilationUnit(); unit != nil {
		for _, imp := range unit.Imports {
			imp = strings.TrimSpace(strings.TrimPrefix(imp, "static "))
			if strings.HasSuffix(imp, ".*") {
				candidate := strings.TrimSuffix(imp, "*") + name
				if _, ok := r.table.LookupType(candidate); ok {
					return candidate, true
				}
				continue
			}
			if simpleName(imp) == name {
				return imp, true
			}
		}
	}
	for t := typeOf(ctx); t != nil; t = t.EnclosingType() {
		if _, ok := r.table.LookupType(t.QualifiedName + "." + name); ok {
			return t.QualifiedName + "." + name, true
		}
	}
	if pkg := ctx.PackageName(); pkg != "" {
		if _, ok := r.table.LookupType(pkg + "." + name); ok {
			return pkg + "." + name, true
		}
	}
	if r.defaultNamespace == "" {
		return name, false
	}
	return r.defaultNamespace + "." + name, false
}

func typeOf(e *model.Element) *model.Element {
	if e.Kind.IsType() {
		return e
	}
	return e.EnclosingType()
}

func isQualified(name string) bool {
	return strings.Contains(strings.TrimRight(name, "[]"), ".")
}

func simpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// QualifiedParams returns the erased, qualified parameter types of an executable
// as they appear in generated API anchors.
func (r *Resolver) QualifiedParams(el *model.Element) []string {
	out := make([]string, len(el.Params))
	for i, p := range el.Params {
		erased := erase(p)
		if erased == "" {
			out[i] = strings.TrimSpace(p)
			continue
		}
		out[i], _ = r.qualify(erased, el)
	}
	return out
}
