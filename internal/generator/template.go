package generator

import (
	"regexp"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/fragment"
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/model"
)

// LinkData is the data passed to link, label and file name templates.
type LinkData struct {
	Name          string
	QualifiedName string
	Kind          string
	Package       string
	// Path is the qualified name of the linked type with dots replaced by slashes.
	Path      string
	Owner     string
	OwnerPath string
	Params    []string
	// Coordinate is nil for locally compiled elements.
	Coordinate *model.Coordinate
	// Default is the label or file name that would be used without a template.
	Default string
}

type replacement struct {
	re   *regexp.Regexp
	repl string
}

// Template is a generator configured with text/template link patterns and
// regular expression rewrites of example source.
type Template struct {
	Base
	name         string
	typeLink     *template.Template
	ctorLink     *template.Template
	methodLink   *template.Template
	fieldLink    *template.Template
	label        *template.Template
	fileName     *template.Template
	replacements []replacement
}

// NewTemplate builds a template generator from configuration.
func NewTemplate(cfg config.GeneratorConfig) (*Template, error) {
	g := &Template{name: cfg.Name}
	parse := func(field, src string) (*template.Template, error) {
		if src == "" {
			return nil, nil
		}
		t, err := template.New(field).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid generator template").
				WithContext("generator", cfg.Name).
				WithContext("template", field).
				Build()
		}
		return t, nil
	}
	var err error
	if g.typeLink, err = parse("type", cfg.Templates.Type); err != nil {
		return nil, err
	}
	if g.ctorLink, err = parse("constructor", cfg.Templates.Constructor); err != nil {
		return nil, err
	}
	if g.methodLink, err = parse("method", cfg.Templates.Method); err != nil {
		return nil, err
	}
	if g.fieldLink, err = parse("field", cfg.Templates.Field); err != nil {
		return nil, err
	}
	if g.label, err = parse("label", cfg.Templates.Label); err != nil {
		return nil, err
	}
	if g.fileName, err = parse("file_name", cfg.Templates.FileName); err != nil {
		return nil, err
	}
	for _, r := range cfg.Replacements {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid replacement pattern").
				WithContext("generator", cfg.Name).
				Build()
		}
		g.replacements = append(g.replacements, replacement{re: re, repl: r.Replace})
	}
	return g, nil
}

func (g *Template) Name() string { return g.name }

func (g *Template) ResolveTypeLink(t *model.Element, coord *model.Coordinate) string {
	return g.exec(g.typeLink, g.data(t, nil, coord, ""))
}

func (g *Template) ResolveConstructorLink(c, owner *model.Element, coord *model.Coordinate) string {
	return g.exec(g.ctorLink, g.data(c, owner, coord, ""))
}

func (g *Template) ResolveMethodLink(m, owner *model.Element, coord *model.Coordinate) string {
	return g.exec(g.methodLink, g.data(m, owner, coord, ""))
}

func (g *Template) ResolveFieldLink(f, owner *model.Element, coord *model.Coordinate) string {
	return g.exec(g.fieldLink, g.data(f, owner, coord, ""))
}

func (g *Template) ResolveLabel(el *model.Element, defaultLabel string) string {
	if g.label == nil {
		return defaultLabel
	}
	if s := g.exec(g.label, g.data(el, el.EnclosingType(), el.EffectiveCoordinate(), defaultLabel)); s != "" {
		return s
	}
	return defaultLabel
}

func (g *Template) ResolveRelativeFileName(el *model.Element, defaultName string) string {
	if g.fileName == nil {
		return defaultName
	}
	if s := g.exec(g.fileName, g.data(el, nil, el.EffectiveCoordinate(), defaultName)); s != "" {
		return s
	}
	return defaultName
}

// RenderSource extracts the example and applies the configured rewrites in order.
func (g *Template) RenderSource(el *model.Element, source string) (string, bool) {
	frag, ok := fragment.ExtractElement(el, source)
	if !ok {
		return "", false
	}
	for _, r := range g.replacements {
		frag = r.re.ReplaceAllString(frag, r.repl)
	}
	return frag, true
}

func (g *Template) data(el, owner *model.Element, coord *model.Coordinate, def string) LinkData {
	d := LinkData{
		Name:          el.Name,
		QualifiedName: el.QualifiedName,
		Kind:          string(el.Kind),
		Package:       el.PackageName(),
		Path:          strings.ReplaceAll(el.QualifiedName, ".", "/"),
		Coordinate:    coord,
		Default:       def,
	}
	if owner != nil {
		d.Owner = owner.QualifiedName
		d.OwnerPath = strings.ReplaceAll(owner.QualifiedName, ".", "/")
		d.Path = d.OwnerPath
	}
	if el.Kind.IsExecutable() {
		d.Params = g.params(el)
	}
	return d
}

func (g *Template) exec(t *template.Template, data LinkData) string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		g.logger().Warn("Generator template failed",
			logfields.Generator(g.name),
			logfields.Kind(data.Kind),
			logfields.Error(err))
		return ""
	}
	return strings.TrimSpace(sb.String())
}
