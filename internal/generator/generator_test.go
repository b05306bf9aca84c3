package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/model"
	"git.home.luguber.info/inful/docgen/internal/signature"
)

type fixture struct {
	table  *model.Table
	vertx  *model.Element
	ctor   *model.Element
	deploy *model.Element
	field  *model.Element
	ext    *model.Element
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		ctor:   &model.Element{Name: "Vertx", Kind: model.KindConstructor},
		deploy: &model.Element{Name: "deployVerticle", Kind: model.KindMethod, Params: []string{"String", "int"}},
		field:  &model.Element{Name: "DEFAULT", Kind: model.KindField, Modifiers: []string{"static"}},
	}
	f.vertx = &model.Element{
		QualifiedName: "io.vertx.core.Vertx",
		Kind:          model.KindClass,
		Members:       []*model.Element{f.ctor, f.deploy, f.field},
	}
	f.ext = &model.Element{
		QualifiedName: "io.netty.Buffer",
		Kind:          model.KindClass,
		Coordinate:    &model.Coordinate{GroupID: "io.netty", ArtifactID: "netty-buffer", Version: "4.1"},
	}
	f.table = model.NewTable()
	require.NoError(t, f.table.Add(f.vertx))
	require.NoError(t, f.table.Add(f.ext))
	return f
}

func (f fixture) env() Env {
	return Env{Table: f.table, Resolver: signature.New(f.table)}
}

func TestAPIDocsLinks(t *testing.T) {
	f := newFixture(t)
	g, err := NewAPIDocs("java", "../../apidocs/", "")
	require.NoError(t, err)
	require.NoError(t, g.Init(f.env()))

	assert.Equal(t, "java", g.Name())
	assert.Equal(t, "../../apidocs/io/vertx/core/Vertx.html", g.ResolveTypeLink(f.vertx, nil))
	assert.Equal(t, "../../apidocs/io/vertx/core/Vertx.html#Vertx--",
		g.ResolveConstructorLink(f.ctor, f.vertx, nil))
	assert.Equal(t, "../../apidocs/io/vertx/core/Vertx.html#deployVerticle-java.lang.String-int-",
		g.ResolveMethodLink(f.deploy, f.vertx, nil))
	assert.Equal(t, "../../apidocs/io/vertx/core/Vertx.html#DEFAULT",
		g.ResolveFieldLink(f.field, f.vertx, nil))

	assert.Empty(t, g.ResolveTypeLink(f.ext, f.ext.Coordinate), "external elements need a template")
	assert.Equal(t, "Vertx", g.ResolveLabel(f.vertx, "Vertx"))
	assert.Equal(t, "io.vertx.core.adoc", g.ResolveRelativeFileName(f.vertx, "io.vertx.core.adoc"))
}

func TestAPIDocsExternalBaseURL(t *testing.T) {
	f := newFixture(t)
	g, err := NewAPIDocs("java", "../../apidocs/", "https://javadoc.io/doc/{{.GroupID}}/{{.ArtifactID}}/{{.Version}}/")
	require.NoError(t, err)
	require.NoError(t, g.Init(f.env()))

	assert.Equal(t, "https://javadoc.io/doc/io.netty/netty-buffer/4.1/io/netty/Buffer.html",
		g.ResolveTypeLink(f.ext, f.ext.Coordinate))

	_, err = NewAPIDocs("java", "", "{{.Broken")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestAPIDocsParamsBeforeInit(t *testing.T) {
	f := newFixture(t)
	g, err := NewAPIDocs("java", "", "")
	require.NoError(t, err)
	assert.Equal(t, "io/vertx/core/Vertx.html#deployVerticle-String-int-",
		g.ResolveMethodLink(f.deploy, f.vertx, nil))
}

func TestTemplateGenerator(t *testing.T) {
	f := newFixture(t)
	g, err := NewTemplate(config.GeneratorConfig{
		Type: config.GeneratorTemplate,
		Name: "kotlin",
		Templates: config.TemplatesConfig{
			Type:     "../../kdoc/{{.Path}}/index.html",
			Method:   "../../kdoc/{{.OwnerPath}}/{{.Name}}.html",
			Label:    "{{.Default}}()",
			FileName: "{{.Package}}/index.md",
		},
		Replacements: []config.Replacement{
			{Pattern: `;(\s*)$`, Replace: "$1"},
			{Pattern: `new (\w+)\(`, Replace: "$1("},
		},
	})
	require.NoError(t, err)
	require.NoError(t, g.Init(f.env()))

	assert.Equal(t, "kotlin", g.Name())
	assert.Equal(t, "../../kdoc/io/vertx/core/Vertx/index.html", g.ResolveTypeLink(f.vertx, nil))
	assert.Equal(t, "../../kdoc/io/vertx/core/Vertx/deployVerticle.html", g.ResolveMethodLink(f.deploy, f.vertx, nil))
	assert.Empty(t, g.ResolveFieldLink(f.field, f.vertx, nil), "no template means no link")
	assert.Equal(t, "deployVerticle()", g.ResolveLabel(f.deploy, "deployVerticle"))
	assert.Equal(t, "io.vertx.core/index.md", g.ResolveRelativeFileName(f.vertx, "ignored.adoc"))
}

func TestTemplateRenderSourceAppliesReplacements(t *testing.T) {
	src := "class Ex {\n  void run() {\n    Foo foo = new Foo();\n  }\n}\n"
	start := len("class Ex {\n  void run() {\n")
	end := start + len("    Foo foo = new Foo();")
	run := &model.Element{Name: "run", Kind: model.KindMethod, Statements: []model.Span{{Start: start + 4, End: end}}}

	g, err := NewTemplate(config.GeneratorConfig{
		Name:         "kotlin",
		Replacements: []config.Replacement{{Pattern: `new (\w+)\(`, Replace: "$1("}, {Pattern: `;$`, Replace: ""}},
	})
	require.NoError(t, err)

	out, ok := g.RenderSource(run, src)
	require.True(t, ok)
	assert.Equal(t, "Foo foo = Foo()", out)

	var base Base
	out, ok = base.RenderSource(run, src)
	require.True(t, ok)
	assert.Equal(t, "Foo foo = new Foo();", out)
}

func TestTemplateRejectsBadInput(t *testing.T) {
	_, err := NewTemplate(config.GeneratorConfig{Name: "x", Templates: config.TemplatesConfig{Type: "{{"}})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = NewTemplate(config.GeneratorConfig{Name: "x", Replacements: []config.Replacement{{Pattern: "("}}})
	require.Error(t, err)
}

func TestTemplateExecutionFailureMeansNoLink(t *testing.T) {
	f := newFixture(t)
	g, err := NewTemplate(config.GeneratorConfig{Name: "x", Templates: config.TemplatesConfig{Type: "{{.Missing}}"}})
	require.NoError(t, err)
	require.NoError(t, g.Init(f.env()))
	assert.Empty(t, g.ResolveTypeLink(f.vertx, nil))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	java, err := NewAPIDocs("java", "", "")
	require.NoError(t, err)
	kotlin, err := NewTemplate(config.GeneratorConfig{Name: "kotlin"})
	require.NoError(t, err)

	require.NoError(t, r.Register(java))
	require.NoError(t, r.Register(kotlin))
	require.Error(t, r.Register(java))
	require.Error(t, r.Register(nil))

	assert.Equal(t, 2, r.Count())
	assert.True(t, r.Has("kotlin"))
	got, err := r.Get("java")
	require.NoError(t, err)
	assert.Same(t, java, got)
	_, err = r.Get("groovy")
	require.Error(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "java", list[0].Name())
	assert.Equal(t, "kotlin", list[1].Name())
}

func TestFromConfig(t *testing.T) {
	r, err := FromConfig([]config.GeneratorConfig{
		{Type: config.GeneratorAPIDocs, Name: "java"},
		{Type: config.GeneratorTemplate, Name: "kotlin"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())

	_, err = FromConfig([]config.GeneratorConfig{{Type: "groovy", Name: "g"}})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = FromConfig([]config.GeneratorConfig{{Name: "java"}, {Name: "java"}})
	require.Error(t, err)
}
