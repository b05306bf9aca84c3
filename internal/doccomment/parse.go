// Package doccomment parses raw documentation comment text into a doctree.Comment.
package doccomment

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docgen/internal/doctree"
)

var entityPattern = regexp.MustCompile(`^&(#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)

// blockElements end the first sentence when they appear after some text.
var blockElements = map[string]bool{
	"p": true, "pre": true, "ul": true, "ol": true, "dl": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"div": true, "blockquote": true, "hr": true,
}

// Parse parses a documentation comment. The comment may still carry its
// delimiters and leading asterisks; both are removed. The single space that
// follows a stripped asterisk is kept as part of the text.
func Parse(raw string) *doctree.Comment {
	text := strip(raw)
	main, tags := splitBlockTags(text)

	c := &doctree.Comment{BlockTags: tags}
	c.FirstSentence, c.Body = splitFirstSentence(parseInline(strings.TrimRight(main, " \t\n")))
	return c
}

func strip(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "/**") {
		return strings.Trim(raw, "\n")
	}
	trimmed = strings.TrimSuffix(strings.TrimPrefix(trimmed, "/**"), "*/")
	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		line = strings.TrimLeft(line, " \t")
		if i > 0 && strings.HasPrefix(line, "*") {
			line = line[1:]
		}
		lines[i] = line
	}
	// Drop blank lines left by the opening and closing delimiters.
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		lines[0] = strings.TrimLeft(lines[0], " \t")
	}
	return strings.Join(lines, "\n")
}

// splitBlockTags separates the main description from trailing block tags. A
// block tag starts on a line whose first non-blank character is @ outside of
// any inline tag.
func splitBlockTags(text string) (string, []doctree.BlockTag) {
	var starts []int
	depth := 0
	lineStart := true
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '\n':
			lineStart = true
			continue
		case lineStart && (ch == ' ' || ch == '\t'):
			continue
		case lineStart && ch == '@' && depth == 0 && i+1 < len(text) && isIdentByte(text[i+1]):
			starts = append(starts, i)
		case ch == '{':
			depth++
		case ch == '}' && depth > 0:
			depth--
		}
		lineStart = false
	}
	if len(starts) == 0 {
		return text, nil
	}

	var tags []doctree.BlockTag
	for n, start := range starts {
		end := len(text)
		if n+1 < len(starts) {
			end = starts[n+1]
		}
		tags = append(tags, parseBlockTag(text[start+1:end]))
	}
	return text[:starts[0]], tags
}

func parseBlockTag(s string) doctree.BlockTag {
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	name := s[:i]
	rest := strings.TrimLeft(s[i:], " \t")
	known := doctree.IsKnownBlockTag(name)
	if known {
		switch name {
		case "param", "throws", "exception":
			rest = dropWords(rest, 1)
		case "serialField":
			rest = dropWords(rest, 2)
		case "see":
			if !strings.HasPrefix(rest, "\"") && !strings.HasPrefix(rest, "<") {
				rest = dropWords(rest, 1)
			}
		}
	}
	return doctree.BlockTag{
		Name:    name,
		Known:   known,
		Content: parseInline(strings.TrimRight(rest, " \t\n")),
	}
}

func dropWords(s string, n int) string {
	for ; n > 0; n-- {
		s = strings.TrimLeft(s, " \t\n")
		i := strings.IndexAny(s, " \t\n")
		if i < 0 {
			return ""
		}
		s = s[i:]
	}
	return strings.TrimLeft(s, " \t")
}

// parseInline turns comment text into nodes.
func parseInline(s string) []doctree.Node {
	var nodes []doctree.Node
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, doctree.Text{Body: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "{@"):
			node, n := parseInlineTag(s[i:])
			flush()
			nodes = append(nodes, node)
			i += n
		case s[i] == '&':
			if m := entityPattern.FindStringSubmatch(s[i:]); m != nil {
				flush()
				nodes = append(nodes, doctree.Entity{Name: m[1]})
				i += len(m[0])
				continue
			}
			text.WriteByte('&')
			i++
		case s[i] == '<':
			node, n := parseTag(s[i:])
			if node == nil {
				text.WriteByte('<')
				i++
				continue
			}
			flush()
			nodes = append(nodes, node)
			i += n
		default:
			text.WriteByte(s[i])
			i++
		}
	}
	flush()
	return nodes
}

// parseInlineTag parses "{@name content}" at the start of s and returns the
// node with the number of bytes consumed.
func parseInlineTag(s string) (doctree.Node, int) {
	end := matchingBrace(s)
	if end < 0 {
		return doctree.Erroneous{Body: s}, len(s)
	}
	inner := s[2:end]
	i := 0
	for i < len(inner) && isIdentByte(inner[i]) {
		i++
	}
	name := inner[:i]
	content := inner[i:]
	// A single separating whitespace character belongs to the tag syntax.
	if content != "" && (content[0] == ' ' || content[0] == '\t' || content[0] == '\n') {
		content = content[1:]
	}

	switch name {
	case "code", "literal":
		return doctree.Literal{Body: content, Code: name == "code"}, end + 1
	case "link", "linkplain":
		sig, label := splitReference(strings.TrimLeft(content, " \t\n"))
		link := doctree.Link{Signature: sig, Plain: name == "linkplain"}
		if label != "" {
			link.Label = parseInline(label)
		}
		return link, end + 1
	default:
		return doctree.Erroneous{Body: s[:end+1]}, end + 1
	}
}

// splitReference separates the reference of a link from its label. Whitespace
// inside a parameter list belongs to the reference.
func splitReference(s string) (string, string) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ' ', '\t', '\n':
			if depth == 0 {
				return s[:i], strings.TrimSpace(s[i:])
			}
		}
	}
	return strings.TrimSpace(s), ""
}

func matchingBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseTag tokenizes one markup tag at the start of s. It returns nil when s
// does not start with a tag.
func parseTag(s string) (doctree.Node, int) {
	z := html.NewTokenizer(strings.NewReader(s))
	tt := z.Next()
	raw := string(z.Raw())
	switch tt {
	case html.StartTagToken, html.SelfClosingTagToken:
		name, _ := z.TagName()
		return doctree.StartElement{Name: string(name), Raw: raw}, len(raw)
	case html.EndTagToken:
		name, _ := z.TagName()
		return doctree.EndElement{Name: string(name)}, len(raw)
	case html.CommentToken:
		return doctree.Erroneous{Body: raw}, len(raw)
	default:
		return nil, 0
	}
}

// splitFirstSentence splits nodes at the end of the first sentence: a period
// followed by whitespace, or a block level element following some text.
func splitFirstSentence(nodes []doctree.Node) ([]doctree.Node, []doctree.Node) {
	seenText := false
	for i, n := range nodes {
		switch v := n.(type) {
		case doctree.Text:
			if idx := sentenceEnd(v.Body); idx >= 0 {
				first := append(append([]doctree.Node{}, nodes[:i]...), doctree.Text{Body: v.Body[:idx+1]})
				var body []doctree.Node
				if rest := strings.TrimLeft(v.Body[idx+1:], " \t\n"); rest != "" {
					body = append(body, doctree.Text{Body: rest})
				}
				body = append(body, nodes[i+1:]...)
				return first, trimLeading(body)
			}
			if strings.TrimSpace(v.Body) != "" {
				seenText = true
			}
		case doctree.StartElement:
			if seenText && blockElements[strings.ToLower(v.Name)] {
				return trimTrailing(append([]doctree.Node{}, nodes[:i]...)), nodes[i:]
			}
		default:
			seenText = true
		}
	}
	return nodes, nil
}

func sentenceEnd(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && (s[i+1] == ' ' || s[i+1] == '\t' || s[i+1] == '\n') {
			return i
		}
	}
	return -1
}

func trimLeading(nodes []doctree.Node) []doctree.Node {
	for len(nodes) > 0 {
		t, ok := nodes[0].(doctree.Text)
		if !ok {
			break
		}
		body := strings.TrimLeft(t.Body, " \t\n")
		if body != "" {
			nodes[0] = doctree.Text{Body: body}
			break
		}
		nodes = nodes[1:]
	}
	return nodes
}

func trimTrailing(nodes []doctree.Node) []doctree.Node {
	for len(nodes) > 0 {
		last := len(nodes) - 1
		t, ok := nodes[last].(doctree.Text)
		if !ok {
			break
		}
		body := strings.TrimRight(t.Body, " \t\n")
		if body != "" {
			nodes[last] = doctree.Text{Body: body}
			break
		}
		nodes = nodes[:last]
	}
	return nodes
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
