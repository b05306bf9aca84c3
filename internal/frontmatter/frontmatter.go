// Package frontmatter reads and writes the YAML front matter of generated
// markdown documents and stamps them with a content fingerprint.
package frontmatter

import (
	"errors"
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a closing one.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates `---` delimited YAML front matter from the body. A document
// without front matter yields an empty field map and the whole content as body.
func Split(content string) (map[string]any, string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, delimiter+"\n") {
		return map[string]any{}, content, nil
	}
	rest := content[len(delimiter)+1:]
	var raw, body string
	switch {
	case strings.HasPrefix(rest, delimiter+"\n"):
		body = rest[len(delimiter)+1:]
	default:
		idx := strings.Index(rest, "\n"+delimiter+"\n")
		if idx < 0 {
			return nil, "", ErrMissingClosingDelimiter
		}
		raw, body = rest[:idx+1], rest[idx+len(delimiter)+2:]
	}

	fields := map[string]any{}
	if strings.TrimSpace(raw) != "" {
		if err := yaml.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, "", err
		}
	}
	return fields, body, nil
}

// Join writes fields as front matter ahead of body. Keys are sorted.
func Join(fields map[string]any, body string) (string, error) {
	if len(fields) == 0 {
		return body, nil
	}
	out, err := yaml.Marshal(fields)
	if err != nil {
		return "", err
	}
	return delimiter + "\n" + string(out) + delimiter + "\n" + body, nil
}

// Fingerprint computes the fingerprint of a document from its front matter
// fields, ignoring any existing fingerprint, and its body.
func Fingerprint(fields map[string]any, body string) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != mdfp.FingerprintField {
			hashed[k] = v
		}
	}
	fm := ""
	if len(hashed) > 0 {
		out, err := yaml.Marshal(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, body), nil
}

// Stamp stores the content fingerprint in the front matter of a markdown
// document, adding front matter when there is none.
func Stamp(content string) (string, error) {
	fields, body, err := Split(content)
	if err != nil {
		return "", err
	}
	fp, err := Fingerprint(fields, body)
	if err != nil {
		return "", err
	}
	fields[mdfp.FingerprintField] = fp
	return Join(fields, body)
}
