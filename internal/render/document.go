package render

import (
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/model"
)

// Document is a unit of output: one file per document and generator.
type Document interface {
	// ID names the document in diagnostics and failure records.
	ID() string
	// RelativeFileName is the output path relative to the generator's output directory.
	RelativeFileName(gen generator.Generator) string
}

// PackageDocument renders the comment of a package that declares a document.
type PackageDocument struct {
	Element   *model.Element
	Extension string
}

func (d *PackageDocument) ID() string { return d.Element.QualifiedName }

func (d *PackageDocument) RelativeFileName(gen generator.Generator) string {
	return gen.ResolveRelativeFileName(d.Element, packageFileName(d.Element, d.Extension))
}

// FileDocument renders a standalone markup file containing {@link} references.
type FileDocument struct {
	// Path is the file on disk.
	Path string
	// RelativePath is the path below the source root, used as output path.
	RelativePath string
}

func (d *FileDocument) ID() string { return d.RelativePath }

func (d *FileDocument) RelativeFileName(generator.Generator) string { return d.RelativePath }

// packageFileName is the file a documented package is written to.
func packageFileName(pkg *model.Element, ext string) string {
	if pkg.Document != nil && pkg.Document.FileName != "" {
		return pkg.Document.FileName
	}
	return pkg.QualifiedName + ext
}

// PackageDocuments returns one document per package that declares a document.
func PackageDocuments(packages []*model.Element, ext string) []Document {
	var docs []Document
	for _, p := range packages {
		if p.Document != nil {
			docs = append(docs, &PackageDocument{Element: p, Extension: ext})
		}
	}
	return docs
}
