// Package generator defines the output generator contract and the built-in generators.
//
// A generator decides how links, labels, example source and output file names
// look for one output language. The same resolved documents are rendered once
// per registered generator.
package generator

import (
	"log/slog"

	"git.home.luguber.info/inful/docgen/internal/fragment"
	"git.home.luguber.info/inful/docgen/internal/model"
	"git.home.luguber.info/inful/docgen/internal/signature"
)

// Env is what a generator receives when a pass starts.
type Env struct {
	Table    model.SymbolTable
	Resolver *signature.Resolver
	Logger   *slog.Logger
}

// Generator produces the language specific parts of rendered documentation.
// Link hooks return "" when the element cannot be linked; the label is then
// rendered without a link. coord is nil for locally compiled elements.
type Generator interface {
	Name() string
	Init(env Env) error
	ResolveTypeLink(t *model.Element, coord *model.Coordinate) string
	ResolveConstructorLink(c, owner *model.Element, coord *model.Coordinate) string
	ResolveMethodLink(m, owner *model.Element, coord *model.Coordinate) string
	ResolveFieldLink(f, owner *model.Element, coord *model.Coordinate) string
	// RenderSource renders an example executable. It returns false when
	// there is nothing to render.
	RenderSource(el *model.Element, source string) (string, bool)
	ResolveLabel(el *model.Element, defaultLabel string) string
	ResolveRelativeFileName(el *model.Element, defaultName string) string
}

// Base implements the optional parts of Generator. Embed it and override what differs.
type Base struct {
	Env Env
}

func (b *Base) Init(env Env) error {
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	b.Env = env
	return nil
}

func (b *Base) ResolveTypeLink(*model.Element, *model.Coordinate) string { return "" }

func (b *Base) ResolveConstructorLink(_, _ *model.Element, _ *model.Coordinate) string { return "" }

func (b *Base) ResolveMethodLink(_, _ *model.Element, _ *model.Coordinate) string { return "" }

func (b *Base) ResolveFieldLink(_, _ *model.Element, _ *model.Coordinate) string { return "" }

// RenderSource extracts the example verbatim.
func (b *Base) RenderSource(el *model.Element, source string) (string, bool) {
	return fragment.ExtractElement(el, source)
}

func (b *Base) ResolveLabel(_ *model.Element, defaultLabel string) string { return defaultLabel }

func (b *Base) ResolveRelativeFileName(_ *model.Element, defaultName string) string {
	return defaultName
}

// params returns the qualified parameter types of an executable, falling back
// to the declared names before Init.
func (b *Base) params(el *model.Element) []string {
	if b.Env.Resolver != nil {
		return b.Env.Resolver.QualifiedParams(el)
	}
	return el.Params
}

func (b *Base) logger() *slog.Logger {
	if b.Env.Logger != nil {
		return b.Env.Logger
	}
	return slog.Default()
}
