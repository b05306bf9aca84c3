package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

func newType(qualified string, kind Kind, members ...*Element) *Element {
	return &Element{QualifiedName: qualified, Kind: kind, Members: members}
}

func TestTableAddAndLookup(t *testing.T) {
	tbl := NewTable()
	inner := &Element{Name: "Inner", Kind: KindClass}
	method := &Element{Name: "run", Kind: KindMethod}
	outer := newType("pkg.Outer", KindClass, method, inner)
	require.NoError(t, tbl.Add(outer))

	got, ok := tbl.LookupType("pkg.Outer")
	require.True(t, ok)
	assert.Same(t, outer, got)
	assert.Equal(t, "Outer", got.Name)

	nested, ok := tbl.LookupType("pkg.Outer.Inner")
	require.True(t, ok)
	assert.Same(t, inner, nested)
	assert.Same(t, outer, nested.Owner)

	assert.Same(t, outer, method.Owner)
	assert.Equal(t, "pkg.Outer#run", method.QualifiedName)

	pkg, ok := tbl.LookupPackage("pkg")
	require.True(t, ok, "package is created implicitly")
	assert.Same(t, pkg, outer.Owner)
	assert.Equal(t, "pkg", outer.PackageName())
}

func TestTableRejectsDuplicates(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Add(newType("a.B", KindClass)))
	err := tbl.Add(newType("a.B", KindClass))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	err = tbl.Add(&Element{QualifiedName: "a.B#c", Kind: KindMethod})
	require.Error(t, err)
}

func TestExplicitPackageUpgradesImplicitOne(t *testing.T) {
	tbl := NewTable()
	typ := newType("a.B", KindClass)
	require.NoError(t, tbl.Add(typ))
	require.NoError(t, tbl.Add(&Element{QualifiedName: "a", Kind: KindPackage, Example: true}))

	pkg, ok := tbl.LookupPackage("a")
	require.True(t, ok)
	assert.Same(t, pkg, typ.Owner)
	assert.True(t, typ.IsExample(), "example marker is inherited from the package")

	err := tbl.Add(&Element{QualifiedName: "a", Kind: KindPackage})
	require.Error(t, err, "explicit packages cannot be redefined")
}

func TestAllMembersInheritance(t *testing.T) {
	tbl := NewTable()
	baseCtor := &Element{Name: "Base", Kind: KindConstructor}
	baseMethod := &Element{Name: "size", Kind: KindMethod}
	hidden := &Element{Name: "secret", Kind: KindField, Modifiers: []string{"private"}}
	base := newType("a.Base", KindClass, baseCtor, baseMethod, hidden)

	ownMethod := &Element{Name: "get", Kind: KindMethod}
	child := newType("a.Child", KindClass, ownMethod)
	child.Supertypes = []string{"a.Base<String>", "a.Missing"}

	require.NoError(t, tbl.Add(base))
	require.NoError(t, tbl.Add(child))

	assert.Equal(t, []*Element{ownMethod, baseMethod}, tbl.AllMembers(child))
	assert.Equal(t, []*Element{baseCtor, baseMethod, hidden}, tbl.AllMembers(base))
}

func TestAllMembersSurvivesCycles(t *testing.T) {
	tbl := NewTable()
	a := newType("x.A", KindInterface, &Element{Name: "a", Kind: KindMethod})
	b := newType("x.B", KindInterface, &Element{Name: "b", Kind: KindMethod})
	a.Supertypes = []string{"x.B"}
	b.Supertypes = []string{"x.A"}
	require.NoError(t, tbl.Add(a))
	require.NoError(t, tbl.Add(b))

	assert.Len(t, tbl.AllMembers(a), 2)
}

func TestMergeAddsOnlyNewSymbols(t *testing.T) {
	first := NewTable()
	require.NoError(t, first.Add(newType("a.B", KindClass)))

	second := NewTable()
	require.NoError(t, second.Add(newType("a.B", KindClass)))
	require.NoError(t, second.Add(newType("a.gen.C", KindClass)))
	require.NoError(t, second.Add(&Element{QualifiedName: "a.gen", Kind: KindPackage, Document: &DocumentInfo{}}))

	require.NoError(t, first.Merge(second))

	c, ok := first.LookupType("a.gen.C")
	require.True(t, ok)
	pkg, ok := first.LookupPackage("a.gen")
	require.True(t, ok)
	assert.Same(t, pkg, c.Owner)
	assert.NotNil(t, pkg.Document)
	assert.Len(t, first.Types(), 2)
}

func TestReadSource(t *testing.T) {
	tbl := NewTable()
	m := &Element{Name: "m", Kind: KindMethod}
	typ := newType("a.B", KindClass, m)
	typ.Unit = &CompilationUnit{Text: "class B {}"}
	require.NoError(t, tbl.Add(typ))

	src, err := tbl.ReadSource(m)
	require.NoError(t, err)
	assert.Equal(t, "class B {}", src)

	orphan := newType("a.C", KindClass)
	require.NoError(t, tbl.Add(orphan))
	_, err = tbl.ReadSource(orphan)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryReadFailure))

	missing := newType("a.D", KindClass)
	missing.Unit = &CompilationUnit{Path: "/does/not/exist.java"}
	require.NoError(t, tbl.Add(missing))
	_, err = tbl.ReadSource(missing)
	assert.True(t, errors.HasCategory(err, errors.CategoryReadFailure))
}

func TestElementScopes(t *testing.T) {
	pkg := &Element{QualifiedName: "p", Kind: KindPackage, Source: &SourceScope{Translate: false}}
	typ := &Element{QualifiedName: "p.T", Kind: KindClass, Owner: pkg}
	m := &Element{Name: "m", Kind: KindMethod, Owner: typ, Modifiers: []string{"public", "static"}}

	assert.False(t, m.Translate())
	typ.Source = &SourceScope{Translate: true}
	assert.True(t, m.Translate())
	assert.True(t, (&Element{}).Translate())

	assert.True(t, m.IsStatic())
	assert.Same(t, typ, m.EnclosingType())
	assert.Nil(t, typ.EnclosingType())

	typ.Coordinate = &Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"}
	assert.Equal(t, "g:a:1", m.EffectiveCoordinate().String())
	assert.Nil(t, pkg.EffectiveCoordinate())
}
