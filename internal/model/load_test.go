package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/doctree"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

func TestLoadFile(t *testing.T) {
	tbl, err := LoadFile(filepath.Join("testdata", "model.yaml"))
	require.NoError(t, err)

	pkg, ok := tbl.LookupPackage("pkg")
	require.True(t, ok)
	require.NotNil(t, pkg.Document)
	assert.Equal(t, "index.adoc", pkg.Document.FileName)
	require.NotNil(t, pkg.Doc)
	assert.Equal(t, doctree.Link{Signature: "pkg.Foo#bar(int)"}, pkg.Doc.FirstSentence[1])

	examples, ok := tbl.LookupPackage("pkg.examples")
	require.True(t, ok)
	assert.True(t, examples.Example)
	assert.False(t, examples.Translate())

	foo, ok := tbl.LookupType("pkg.Foo")
	require.True(t, ok)
	assert.Equal(t, "io.example:example-core:1.0.0", foo.Coordinate.String())
	assert.Equal(t, []string{"java.util.List"}, foo.Unit.Imports)
	assert.Equal(t, filepath.Join("testdata", "src", "Foo.java"), foo.Unit.Path)
	require.Len(t, foo.Members, 5)

	ctor := foo.Members[0]
	assert.Equal(t, KindConstructor, ctor.Kind)
	assert.Equal(t, "Foo", ctor.Name)

	bar := foo.Members[1]
	assert.Equal(t, []string{"int"}, bar.Params)
	require.Len(t, bar.Statements, 2)

	src, err := tbl.ReadSource(bar)
	require.NoError(t, err)
	assert.Equal(t, "int y = x;", src[bar.Statements[0].Start:bar.Statements[0].End])
	assert.Equal(t, "if (y > 0) {\n      y--;\n    }", src[bar.Statements[1].Start:bar.Statements[1].End])
	assert.Equal(t, "public class Foo {", src[foo.Span.Start:foo.Span.Start+len("public class Foo {")])

	inner, ok := tbl.LookupType("pkg.Foo.Inner")
	require.True(t, ok)
	assert.Equal(t, KindInterface, inner.Kind)
	assert.Same(t, foo, inner.Owner)
}

func TestLoadRejectsBadKinds(t *testing.T) {
	_, err := Load([]byte("types:\n  - name: X\n    kind: method\n"), "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = Load([]byte("types:\n  - name: X\n    members:\n      - name: y\n        kind: package\n"), "")
	require.Error(t, err)
}

func TestLoadLineRangeOutOfBounds(t *testing.T) {
	_, err := Load([]byte("types:\n  - name: X\n    file: src/Foo.java\n    lines: {from: 40}\n"), "testdata")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestLoadAcceptsJSON(t *testing.T) {
	tbl, err := Load([]byte(`{"types":[{"name":"B","package":"a","kind":"enum"}]}`), "")
	require.NoError(t, err)
	b, ok := tbl.LookupType("a.B")
	require.True(t, ok)
	assert.Equal(t, KindEnum, b.Kind)
}
