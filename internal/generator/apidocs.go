package generator

import (
	"strings"
	"text/template"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/model"
)

// APIDocs links to generated API reference pages laid out by qualified name,
// for example ../../apidocs/io/vertx/core/Vertx.html#deployVerticle-java.lang.String-.
// Example source is rendered as written.
type APIDocs struct {
	Base
	name     string
	baseURL  string
	external *template.Template
}

// NewAPIDocs creates an API reference generator. externalBaseURL is a template
// over the element's Coordinate; without it, elements from other artifacts are
// not linked.
func NewAPIDocs(name, baseURL, externalBaseURL string) (*APIDocs, error) {
	g := &APIDocs{name: name, baseURL: baseURL}
	if externalBaseURL != "" {
		t, err := template.New("external_base_url").Option("missingkey=error").Parse(externalBaseURL)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid external_base_url template").
				WithContext("generator", name).
				Build()
		}
		g.external = t
	}
	return g, nil
}

func (g *APIDocs) Name() string { return g.name }

func (g *APIDocs) ResolveTypeLink(t *model.Element, coord *model.Coordinate) string {
	base, ok := g.base(coord)
	if !ok {
		return ""
	}
	return base + strings.ReplaceAll(t.QualifiedName, ".", "/") + ".html"
}

func (g *APIDocs) ResolveConstructorLink(c, owner *model.Element, coord *model.Coordinate) string {
	return g.executableLink(c, owner, owner.Name, coord)
}

func (g *APIDocs) ResolveMethodLink(m, owner *model.Element, coord *model.Coordinate) string {
	return g.executableLink(m, owner, m.Name, coord)
}

func (g *APIDocs) ResolveFieldLink(f, owner *model.Element, coord *model.Coordinate) string {
	link := g.ResolveTypeLink(owner, coord)
	if link == "" {
		return ""
	}
	return link + "#" + f.Name
}

func (g *APIDocs) executableLink(el, owner *model.Element, name string, coord *model.Coordinate) string {
	link := g.ResolveTypeLink(owner, coord)
	if link == "" {
		return ""
	}
	var anchor strings.Builder
	anchor.WriteString("#")
	anchor.WriteString(name)
	anchor.WriteByte('-')
	anchor.WriteString(strings.Join(g.params(el), "-"))
	anchor.WriteByte('-')
	return link + anchor.String()
}

func (g *APIDocs) base(coord *model.Coordinate) (string, bool) {
	if coord == nil {
		return g.baseURL, true
	}
	if g.external == nil {
		return "", false
	}
	var sb strings.Builder
	if err := g.external.Execute(&sb, coord); err != nil {
		g.logger().Warn("External base URL template failed",
			logfields.Generator(g.name),
			logfields.Error(err))
		return "", false
	}
	return sb.String(), true
}
