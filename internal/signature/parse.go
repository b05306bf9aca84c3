// Package signature resolves textual references such as pkg.Type#member(int)
// to elements of a symbol table.
package signature

import (
	"errors"
	"strings"
)

// ErrInvalid reports a signature that cannot be parsed.
var ErrInvalid = errors.New("invalid signature")

// Ref is a parsed reference signature.
type Ref struct {
	Raw string
	// Type is the type or package part, before the member marker.
	Type      string
	Member    string
	HasMember bool
	// HasParens distinguishes m() from m. Params is only meaningful when it is set.
	HasParens bool
	Params    []string
}

// Parse splits a signature of the form [Type][#member[(P1,P2,...)]].
func Parse(sig string) (Ref, error) {
	ref := Ref{Raw: sig}
	s := strings.TrimSpace(sig)
	if s == "" {
		return ref, ErrInvalid
	}

	hash := lastUnescapedHash(s)
	if hash < 0 {
		ref.Type = unescape(s)
		if strings.ContainsAny(ref.Type, "()") {
			return ref, ErrInvalid
		}
		return ref, nil
	}

	ref.Type = unescape(strings.TrimSpace(s[:hash]))
	ref.HasMember = true
	member := s[hash+1:]
	if open := strings.IndexByte(member, '('); open >= 0 {
		if !strings.HasSuffix(member, ")") {
			return ref, ErrInvalid
		}
		ref.HasParens = true
		ref.Params = splitParams(member[open+1 : len(member)-1])
		member = member[:open]
	}
	ref.Member = strings.TrimSpace(member)
	if ref.Type == "" || ref.Member == "" {
		return ref, ErrInvalid
	}
	return ref, nil
}

func lastUnescapedHash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '#' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\#`, "#")
}

// splitParams splits on commas outside of type arguments and trims each entry.
// An empty list yields an empty, non-nil slice.
func splitParams(s string) []string {
	params := []string{}
	if strings.TrimSpace(s) == "" {
		return params
	}
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(params, strings.TrimSpace(s[start:]))
}

// erase removes type arguments, turns varargs into arrays and drops a trailing
// parameter name. It returns "" when the name is not a well formed type.
func erase(name string) string {
	var sb strings.Builder
	depth := 0
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return ""
			}
		default:
			if depth == 0 {
				sb.WriteByte(c)
			}
		}
	}
	if depth != 0 {
		return ""
	}
	out := strings.TrimSpace(sb.String())
	if fields := strings.Fields(out); len(fields) > 1 {
		// "int x" names the parameter; "int []" is still one type.
		if strings.HasPrefix(fields[1], "[") {
			out = strings.Join(fields, "")
		} else {
			out = fields[0]
		}
	}
	if strings.HasSuffix(out, "...") {
		out = strings.TrimSuffix(out, "...") + "[]"
	}
	out = strings.ReplaceAll(out, " ", "")
	if !validTypeName(out) {
		return ""
	}
	return out
}

func validTypeName(s string) bool {
	base := strings.TrimRight(s, "[]")
	if base == "" || strings.Count(s[len(base):], "[") != strings.Count(s[len(base):], "]") {
		return false
	}
	for _, part := range strings.Split(base, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			c := part[i]
			if c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80 {
				continue
			}
			if c >= '0' && c <= '9' && i > 0 {
				continue
			}
			return false
		}
	}
	return true
}
