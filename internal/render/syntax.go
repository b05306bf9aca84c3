package render

import (
	"io"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// Syntax writes markup specific constructs.
type Syntax interface {
	Name() string
	WriteLink(w io.StringWriter, target, label string)
}

type asciidoc struct{}

func (asciidoc) Name() string { return config.SyntaxAsciidoc }

func (asciidoc) WriteLink(w io.StringWriter, target, label string) {
	_, _ = w.WriteString("`link:" + target + "[" + label + "]`")
}

type markdown struct{}

func (markdown) Name() string { return config.SyntaxMarkdown }

func (markdown) WriteLink(w io.StringWriter, target, label string) {
	_, _ = w.WriteString("[`" + label + "`](" + target + ")")
}

// AsciiDoc renders links as link macros.
var AsciiDoc Syntax = asciidoc{}

// Markdown renders links as inline links.
var Markdown Syntax = markdown{}

// SyntaxFor returns the syntax registered under name.
func SyntaxFor(name string) (Syntax, error) {
	switch name {
	case config.SyntaxAsciidoc, "":
		return AsciiDoc, nil
	case config.SyntaxMarkdown:
		return Markdown, nil
	default:
		return nil, errors.ConfigError("unknown output syntax " + name).Build()
	}
}
