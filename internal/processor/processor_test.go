package processor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/doctree"
	"git.home.luguber.info/inful/docgen/internal/failures"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/model"
	"git.home.luguber.info/inful/docgen/internal/output"
	"git.home.luguber.info/inful/docgen/internal/render"
)

func pkgDoc(name string, nodes ...doctree.Node) *model.Element {
	return &model.Element{
		QualifiedName: name,
		Kind:          model.KindPackage,
		Document:      &model.DocumentInfo{},
		Doc:           &doctree.Comment{FirstSentence: nodes},
	}
}

func link(sig string) doctree.Link { return doctree.Link{Signature: sig} }

func text(s string) doctree.Text { return doctree.Text{Body: s} }

func fooType() *model.Element {
	return &model.Element{
		QualifiedName: "pkg.Foo",
		Kind:          model.KindClass,
		Members: []*model.Element{
			{Name: "bar", Kind: model.KindMethod, Params: []string{"int"}},
		},
	}
}

func apidocs(t *testing.T, name, base string) generator.Generator {
	t.Helper()
	gen, err := generator.NewAPIDocs(name, base, "")
	require.NoError(t, err)
	return gen
}

func table(t *testing.T, elements ...*model.Element) *model.Table {
	t.Helper()
	tbl := model.NewTable()
	for _, el := range elements {
		require.NoError(t, tbl.Add(el))
	}
	return tbl
}

// pass runs one pass over every documented package of tbl.
func pass(t *testing.T, p *Processor, tbl *model.Table) {
	t.Helper()
	require.NoError(t, p.Pass(context.Background(), tbl, render.PackageDocuments(tbl.Packages(), ".adoc")))
}

func TestForwardReferenceResolvesInLaterPass(t *testing.T) {
	sink := output.NewMemorySink()
	p := New([]generator.Generator{apidocs(t, "java", "../../apidocs/")}, WithSink(sink))

	pass(t, p, table(t, pkgDoc("a", text("See "), link("pkg.Foo#bar(int)"), text("."))))
	require.Len(t, p.Graph().Unresolved(), 1)

	pass(t, p, table(t, fooType()))
	assert.Empty(t, p.Graph().Unresolved())

	report, err := p.Finish(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []string{"java/a.adoc"}, report.Written)

	got, ok := sink.Get("java", "a.adoc")
	require.True(t, ok)
	assert.Equal(t, "See `link:../../apidocs/pkg/Foo.html#bar-int-[bar]`.", got)
}

func TestUnresolvedReferenceFailsOnlyThatDocument(t *testing.T) {
	store, err := failures.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	sink := output.NewMemorySink()
	p := New([]generator.Generator{apidocs(t, "java", "../../apidocs/")},
		WithSink(sink), WithFailureStore(store), WithRunID("run-1"))

	pass(t, p, table(t,
		pkgDoc("broken", text("See "), link("missing.Thing")),
		pkgDoc("ok", text("Fine.")),
	))
	report, err := p.Finish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"broken"}, report.Failed)
	assert.Equal(t, []string{"missing.Thing"}, report.Unresolved)
	assert.Equal(t, []string{"java/ok.adoc"}, sink.Keys())

	failed := p.Failures()
	require.Contains(t, failed, "broken")
	assert.True(t, errors.HasCategory(failed["broken"], errors.CategoryUnresolvedReference))

	records, err := store.ByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "broken", records[0].Document)
	assert.Equal(t, "java", records[0].Generator)
	assert.Equal(t, string(errors.CategoryUnresolvedReference), records[0].Category)
}

func TestCircularIncludeFailsDocument(t *testing.T) {
	b := &model.Element{QualifiedName: "b", Kind: model.KindPackage, Doc: &doctree.Comment{FirstSentence: []doctree.Node{link("d")}}}
	d := &model.Element{QualifiedName: "d", Kind: model.KindPackage, Doc: &doctree.Comment{FirstSentence: []doctree.Node{link("b")}}}
	sink := output.NewMemorySink()
	p := New([]generator.Generator{apidocs(t, "java", "../../apidocs/")}, WithSink(sink))

	pass(t, p, table(t, pkgDoc("top", link("b")), b, d))
	report, err := p.Finish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"top"}, report.Failed)
	assert.Empty(t, sink.Keys())
	assert.True(t, errors.HasCategory(p.Failures()["top"], errors.CategoryCircularInclude))
}

func TestEveryGeneratorGetsItsOwnOutput(t *testing.T) {
	sink := output.NewMemorySink()
	p := New([]generator.Generator{
		apidocs(t, "java", "../../apidocs/"),
		apidocs(t, "kotlin", "../../kdoc/"),
	}, WithSink(sink))

	pass(t, p, table(t, pkgDoc("pkg", text("In $lang use "), link("pkg.Foo")), fooType()))
	report, err := p.Finish(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Written, 2)

	java, ok := sink.Get("java", "pkg.adoc")
	require.True(t, ok)
	assert.Equal(t, "In java use `link:../../apidocs/pkg/Foo.html[Foo]`", java)

	kotlin, ok := sink.Get("kotlin", "pkg.adoc")
	require.True(t, ok)
	assert.Equal(t, "In kotlin use `link:../../kdoc/pkg/Foo.html[Foo]`", kotlin)
}

func fileDoc(t *testing.T, name, content string) render.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return &render.FileDocument{Path: path, RelativePath: name}
}

func TestLanguageBlocksArePerGenerator(t *testing.T) {
	sink := output.NewMemorySink()
	p := New([]generator.Generator{
		apidocs(t, "java", "../../apidocs/"),
		apidocs(t, "kotlin", "../../kdoc/"),
	}, WithSink(sink))

	docs := []render.Document{fileDoc(t, "guide.adoc", "[language,kotlin]\n----\nK\n----\nend\n")}
	require.NoError(t, p.Pass(context.Background(), nil, docs))
	_, err := p.Finish(context.Background())
	require.NoError(t, err)

	java, _ := sink.Get("java", "guide.adoc")
	assert.Equal(t, "\nend\n", java)
	kotlin, _ := sink.Get("kotlin", "guide.adoc")
	assert.Equal(t, "K\n\nend\n", kotlin)
}

func TestPostProcessingErrorSuppressesAllOutputs(t *testing.T) {
	sink := output.NewMemorySink()
	p := New([]generator.Generator{
		apidocs(t, "java", "../../apidocs/"),
		apidocs(t, "kotlin", "../../kdoc/"),
	}, WithSink(sink))

	docs := []render.Document{
		fileDoc(t, "bad.adoc", "[language]\nx\n"),
		fileDoc(t, "good.adoc", "fine\n"),
	}
	require.NoError(t, p.Pass(context.Background(), nil, docs))
	report, err := p.Finish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"bad.adoc"}, report.Failed)
	assert.True(t, errors.HasCategory(p.Failures()["bad.adoc"], errors.CategoryValidation))
	assert.Equal(t, []string{"java/good.adoc", "kotlin/good.adoc"}, sink.Keys())
}

func TestDuplicateDocumentIsRenderedOnce(t *testing.T) {
	sink := output.NewMemorySink()
	p := New([]generator.Generator{apidocs(t, "java", "../../apidocs/")}, WithSink(sink))

	doc := pkgDoc("a", text("Once."))
	docs := []render.Document{&render.PackageDocument{Element: doc, Extension: ".adoc"}}
	require.NoError(t, p.Pass(context.Background(), table(t, doc), docs))
	require.NoError(t, p.Pass(context.Background(), nil, docs))

	report, err := p.Finish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"java/a.adoc"}, report.Written)
}

func TestMissingFileDocumentFailsAtPass(t *testing.T) {
	sink := output.NewMemorySink()
	p := New([]generator.Generator{apidocs(t, "java", "../../apidocs/")}, WithSink(sink))

	docs := []render.Document{&render.FileDocument{Path: filepath.Join(t.TempDir(), "nope.adoc"), RelativePath: "nope.adoc"}}
	require.NoError(t, p.Pass(context.Background(), nil, docs))
	report, err := p.Finish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"nope.adoc"}, report.Failed)
	assert.True(t, errors.HasCategory(p.Failures()["nope.adoc"], errors.CategoryReadFailure))
	assert.Empty(t, sink.Keys())
}

func TestLinkVerificationCountsMissingTargets(t *testing.T) {
	docs := []render.Document{
		fileDoc(t, "index.md", "See [other](other.md) and [gone](gone.md) or [site](https://example.com/x.md).\n"),
		fileDoc(t, "other.md", "Other.\n"),
	}

	sink := output.NewMemorySink()
	p := New([]generator.Generator{apidocs(t, "java", "../../apidocs/")},
		WithSink(sink), WithSyntax(render.Markdown), WithExtension(".md"), WithLinkVerification(true))
	require.NoError(t, p.Pass(context.Background(), nil, docs))
	report, err := p.Finish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.BrokenLinks)
	assert.Len(t, report.Written, 2)
}

func TestCanceledContext(t *testing.T) {
	p := New([]generator.Generator{apidocs(t, "java", "../../apidocs/")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, p.Pass(ctx, nil, nil), context.Canceled)
	_, err := p.Finish(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
