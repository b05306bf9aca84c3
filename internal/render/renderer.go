// Package render turns package comments and markup files into deferred
// writers, one per document and generator.
//
// References are not resolved while rendering. Each {@link} registers a
// request with the resolution graph and leaves a placeholder in the writer;
// the placeholder is filled when a checkpoint resolves the signature. Linking
// to a package without its own document includes that package's comment in
// place.
package render

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docgen/internal/doctree"
	"git.home.luguber.info/inful/docgen/internal/docwriter"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/fragment"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/model"
	"git.home.luguber.info/inful/docgen/internal/resolution"
)

// Renderer renders documents against one resolution graph. It is not safe
// for concurrent use.
type Renderer struct {
	graph     *resolution.Graph
	table     model.SymbolTable
	syntax    Syntax
	extension string
	logger    *slog.Logger

	// packages being rendered, outermost first
	stack []string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSyntax selects the output markup. The default is AsciiDoc.
func WithSyntax(s Syntax) Option {
	return func(r *Renderer) {
		if s != nil {
			r.syntax = s
		}
	}
}

// WithExtension sets the extension of package document file names.
func WithExtension(ext string) Option {
	return func(r *Renderer) { r.extension = ext }
}

// WithLogger sets the renderer logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a renderer.
func New(graph *resolution.Graph, table model.SymbolTable, opts ...Option) *Renderer {
	r := &Renderer{
		graph:     graph,
		table:     table,
		syntax:    AsciiDoc,
		extension: ".adoc",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes doc for gen into a new writer. Errors returned here abort the
// document immediately; errors of deferred references surface when the
// writer is rendered.
func (r *Renderer) Render(doc Document, gen generator.Generator) (*docwriter.Writer, error) {
	w := docwriter.New()
	var err error
	switch d := doc.(type) {
	case *PackageDocument:
		err = r.renderPackage(gen, d.Element, w)
	case *FileDocument:
		err = r.renderFile(gen, d, w)
	default:
		err = errors.InternalError("unsupported document type").Build()
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Renderer) renderPackage(gen generator.Generator, pkg *model.Element, w *docwriter.Writer) error {
	for i, name := range r.stack {
		if name == pkg.QualifiedName {
			chain := append(append([]string{}, r.stack[i:]...), pkg.QualifiedName)
			return errors.CircularInclude(strings.Join(chain, " -> ")).
				WithContext("document", r.stack[0]).
				Build()
		}
	}
	r.stack = append(r.stack, pkg.QualifiedName)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	if pkg.Doc == nil {
		return nil
	}
	r.renderComment(scope{gen: gen, origin: pkg.QualifiedName}, pkg.Doc, w)
	return nil
}

// scope carries what link processing needs from the enclosing render.
type scope struct {
	gen    generator.Generator
	origin string
}

func (r *Renderer) renderComment(s scope, c *doctree.Comment, w *docwriter.Writer) {
	r.renderNodes(s, c.FirstSentence, w)
	if len(c.Body) > 0 {
		_, _ = w.WriteString("\n\n")
		w.ResetParagraph()
		r.renderNodes(s, c.Body, w)
	}
	for _, tag := range c.BlockTags {
		_, _ = w.WriteString("\n")
		if !tag.Known {
			_, _ = w.WriteString("@" + tag.Name + " ")
		}
		r.renderNodes(s, tag.Content, w)
	}
}

func (r *Renderer) renderNodes(s scope, nodes []doctree.Node, w *docwriter.Writer) {
	for _, n := range nodes {
		switch n := n.(type) {
		case doctree.Text:
			filterLang(w, n.Body, s.gen.Name())
		case doctree.Erroneous:
			filterLang(w, n.Body, s.gen.Name())
		case doctree.Literal:
			_, _ = w.WriteString("`" + n.Body + "`")
		case doctree.Entity:
			_, _ = w.WriteString(unescapeEntity(n.Name))
		case doctree.StartElement:
			_, _ = w.WriteString(n.Raw)
		case doctree.EndElement:
			_, _ = w.WriteString("</" + n.Name + ">")
		case doctree.Link:
			r.link(s, n.Signature, strings.TrimSpace(doctree.PlainText(n.Label)), w)
		case doctree.BlockTag:
			r.renderNodes(s, n.Content, w)
		}
	}
}

// link defers the rendering of a reference until its signature resolves.
func (r *Renderer) link(s scope, sig, label string, w *docwriter.Writer) {
	var (
		resolved *docwriter.Writer
		failure  error
		done     bool
	)
	r.graph.Request(sig, s.origin, func(el *model.Element) {
		resolved, failure = r.handle(s.gen, el, label)
		done = true
	})
	w.WriteFuture(func() (*docwriter.Writer, error) {
		if !done {
			return nil, errors.UnresolvedReference(sig).
				WithContext("document", s.origin).
				Build()
		}
		return resolved, failure
	})
}

// handle renders a resolved reference.
func (r *Renderer) handle(gen generator.Generator, el *model.Element, label string) (*docwriter.Writer, error) {
	w := docwriter.New()
	switch {
	case el.Kind == model.KindPackage:
		if el.Document != nil {
			_, _ = w.WriteString(packageFileName(el, r.extension))
			return w, nil
		}
		if err := r.renderPackage(gen, el, w); err != nil {
			return nil, err
		}
		return w, nil

	case el.IsExample():
		if err := r.example(gen, el, w); err != nil {
			return nil, err
		}
		return w, nil
	}

	coord := el.EffectiveCoordinate()
	var target string
	switch {
	case el.Kind.IsType():
		target = gen.ResolveTypeLink(el, coord)
	case el.Kind == model.KindConstructor:
		target = gen.ResolveConstructorLink(el, el.EnclosingType(), coord)
	case el.Kind == model.KindMethod:
		target = gen.ResolveMethodLink(el, el.EnclosingType(), coord)
	case el.Kind.IsVariable():
		target = gen.ResolveFieldLink(el, el.EnclosingType(), coord)
	default:
		return nil, errors.InternalError("cannot link element of kind " + string(el.Kind)).
			WithContext("signature", el.String()).
			Build()
	}
	if label == "" {
		label = r.label(gen, el)
	}
	if target == "" {
		r.logger.Debug("No link for element",
			logfields.Generator(gen.Name()),
			logfields.Signature(el.String()))
		_, _ = w.WriteString("`" + label + "`")
		return w, nil
	}
	r.syntax.WriteLink(w, target, label)
	return w, nil
}

// example writes the source of an element marked as example code.
func (r *Renderer) example(gen generator.Generator, el *model.Element, w *docwriter.Writer) error {
	if !el.Kind.IsExecutable() && !el.Kind.IsType() {
		return errors.UnsupportedExample(string(el.Kind)).
			WithContext("signature", el.String()).
			Build()
	}
	source, err := r.table.ReadSource(el)
	if err != nil {
		return err
	}
	var (
		frag string
		ok   bool
	)
	if el.Kind.IsExecutable() && el.Translate() {
		frag, ok = gen.RenderSource(el, source)
	} else {
		frag, ok = fragment.ExtractElement(el, source)
	}
	if !ok {
		return nil
	}
	w.LiteralMode()
	_, _ = w.WriteString(frag)
	w.CommentMode()
	return nil
}

// label is the default text of a link to el.
func (r *Renderer) label(gen generator.Generator, el *model.Element) string {
	label := el.Name
	if el.Kind == model.KindAnnotationType {
		label = "@" + label
	}
	if el.IsStatic() && (el.Kind == model.KindMethod || el.Kind.IsVariable()) {
		if owner := el.EnclosingType(); owner != nil {
			label = owner.Name + "." + label
		}
	}
	return gen.ResolveLabel(el, label)
}
