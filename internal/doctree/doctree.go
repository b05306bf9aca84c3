// Package doctree defines the parsed documentation comment tree walked by the renderer.
package doctree

// Node is one element of a comment tree.
type Node interface {
	node()
}

// Text is plain comment text. Newlines and the continuation space that
// follows them are kept as they appear in the source.
type Text struct {
	Body string
}

// Literal is an inline code or literal span. Code is true for {@code}.
type Literal struct {
	Body string
	Code bool
}

// Entity is a character entity reference without the surrounding & and ;.
// Examples: "amp", "#64", "#x40".
type Entity struct {
	Name string
}

// StartElement is an opening markup tag. Raw is the exact source text of the tag.
type StartElement struct {
	Name string
	Raw  string
}

// EndElement is a closing markup tag.
type EndElement struct {
	Name string
}

// Link is a cross reference. Label is empty when the reference has no explicit label.
type Link struct {
	Signature string
	Label     []Node
	Plain     bool
}

// BlockTag is a trailing tag such as @param or @since.
type BlockTag struct {
	Name    string
	Known   bool
	Content []Node
}

// Erroneous is text the comment parser could not make sense of. It renders as is.
type Erroneous struct {
	Body string
}

func (Text) node()         {}
func (Literal) node()      {}
func (Entity) node()       {}
func (StartElement) node() {}
func (EndElement) node()   {}
func (Link) node()         {}
func (BlockTag) node()     {}
func (Erroneous) node()    {}

// Comment is a parsed documentation comment.
type Comment struct {
	FirstSentence []Node
	Body          []Node
	BlockTags     []BlockTag
}

// Empty reports whether the comment carries no content at all.
func (c *Comment) Empty() bool {
	return c == nil || (len(c.FirstSentence) == 0 && len(c.Body) == 0 && len(c.BlockTags) == 0)
}

// knownBlockTags are rendered without their @name prefix.
var knownBlockTags = map[string]bool{
	"author":      true,
	"deprecated":  true,
	"exception":   true,
	"param":       true,
	"return":      true,
	"see":         true,
	"serial":      true,
	"serialData":  true,
	"serialField": true,
	"since":       true,
	"throws":      true,
	"version":     true,
}

// IsKnownBlockTag reports whether name is a standard block tag.
func IsKnownBlockTag(name string) bool {
	return knownBlockTags[name]
}

// PlainText concatenates the textual content of nodes, ignoring markup.
func PlainText(nodes []Node) string {
	var out []byte
	for _, n := range nodes {
		switch v := n.(type) {
		case Text:
			out = append(out, v.Body...)
		case Literal:
			out = append(out, v.Body...)
		case Erroneous:
			out = append(out, v.Body...)
		case Link:
			if len(v.Label) > 0 {
				out = append(out, PlainText(v.Label)...)
			} else {
				out = append(out, v.Signature...)
			}
		}
	}
	return string(out)
}
