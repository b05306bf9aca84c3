// Package model holds the symbol table the renderer resolves references against.
//
// Elements are built up front, either programmatically or from model files
// (see LoadFile), and are treated as immutable once added to a Table.
package model

import (
	"fmt"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/doctree"
)

// Kind is the kind of a program element.
type Kind string

const (
	KindPackage        Kind = "package"
	KindClass          Kind = "class"
	KindInterface      Kind = "interface"
	KindEnum           Kind = "enum"
	KindAnnotationType Kind = "annotation_type"
	KindField          Kind = "field"
	KindEnumConstant   Kind = "enum_constant"
	KindConstructor    Kind = "constructor"
	KindMethod         Kind = "method"
)

// IsType reports whether the kind declares a type.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindInterface, KindEnum, KindAnnotationType:
		return true
	}
	return false
}

// IsExecutable reports whether the kind is a constructor or method.
func (k Kind) IsExecutable() bool {
	return k == KindConstructor || k == KindMethod
}

// IsVariable reports whether the kind is a field or enum constant.
func (k Kind) IsVariable() bool {
	return k == KindField || k == KindEnumConstant
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindPackage || k.IsType() || k.IsExecutable() || k.IsVariable()
}

// Span is a byte range [Start, End) in a compilation unit's source text.
type Span struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Coordinate identifies the artifact an element was compiled from.
// A nil *Coordinate means the element belongs to the locally compiled sources.
type Coordinate struct {
	GroupID    string `yaml:"group_id" json:"group_id"`
	ArtifactID string `yaml:"artifact_id" json:"artifact_id"`
	Version    string `yaml:"version" json:"version"`
}

func (c *Coordinate) String() string {
	if c == nil {
		return ""
	}
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// SourceScope marks an element whose examples are rendered from source.
// Translate asks generators to translate the source into their own language.
type SourceScope struct {
	Translate bool
}

// DocumentInfo marks a package as a standalone document.
type DocumentInfo struct {
	FileName string
}

// CompilationUnit is the source file an element is declared in.
type CompilationUnit struct {
	Path    string
	Package string
	Imports []string
	// Text, when set, is used instead of reading Path.
	Text string
}

// Element is a program symbol.
type Element struct {
	Name          string
	QualifiedName string
	Kind          Kind
	Owner         *Element
	Modifiers     []string
	// Params are the declared parameter type names of an executable.
	Params     []string
	Members    []*Element
	Supertypes []string
	Example    bool
	Source     *SourceScope
	Document   *DocumentInfo
	Doc        *doctree.Comment
	Unit       *CompilationUnit
	// Span covers the whole declaration; Statements cover an executable's body statements.
	Span       Span
	Statements []Span
	Coordinate *Coordinate

	implicit bool
}

func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.Kind.IsExecutable() {
		return fmt.Sprintf("%s(%s)", e.QualifiedName, strings.Join(e.Params, ","))
	}
	return e.QualifiedName
}

// HasModifier reports whether the element declares modifier m.
func (e *Element) HasModifier(m string) bool {
	return slices.Contains(e.Modifiers, m)
}

// IsStatic reports whether the element carries the static modifier.
func (e *Element) IsStatic() bool {
	return e.HasModifier("static")
}

// EnclosingType returns the nearest owner that is a type, or nil.
func (e *Element) EnclosingType() *Element {
	for o := e.Owner; o != nil; o = o.Owner {
		if o.Kind.IsType() {
			return o
		}
	}
	return nil
}

// PackageName returns the name of the package the element belongs to.
func (e *Element) PackageName() string {
	for cur := e; cur != nil; cur = cur.Owner {
		if cur.Kind == KindPackage {
			return cur.QualifiedName
		}
		if cur.Unit != nil && cur.Unit.Package != "" {
			return cur.Unit.Package
		}
	}
	return ""
}

// CompilationUnit returns the unit of the element or of its nearest owner that has one.
func (e *Element) CompilationUnit() *CompilationUnit {
	for cur := e; cur != nil; cur = cur.Owner {
		if cur.Unit != nil {
			return cur.Unit
		}
	}
	return nil
}

// IsExample reports whether the element or any enclosing element is marked as example source.
func (e *Element) IsExample() bool {
	for cur := e; cur != nil; cur = cur.Owner {
		if cur.Example {
			return true
		}
	}
	return false
}

// Translate reports whether example source should be handed to generators for translation.
// The nearest enclosing source scope decides; without one, translation is requested.
func (e *Element) Translate() bool {
	for cur := e; cur != nil; cur = cur.Owner {
		if cur.Source != nil {
			return cur.Source.Translate
		}
	}
	return true
}

// EffectiveCoordinate returns the coordinate of the element or of its nearest owner.
func (e *Element) EffectiveCoordinate() *Coordinate {
	for cur := e; cur != nil; cur = cur.Owner {
		if cur.Coordinate != nil {
			return cur.Coordinate
		}
	}
	return nil
}
