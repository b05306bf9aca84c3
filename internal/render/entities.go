package render

import (
	"strconv"
	"strings"
)

// unescapeEntity decodes a character reference given without its & and ;
// delimiters. Numeric forms #NNN, #xHH and uHHHH become the character they
// denote; invalid numeric forms are returned as is. Named references are
// written back as &name; since both output syntaxes accept them.
func unescapeEntity(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(name, "#x"), strings.HasPrefix(name, "#X"):
		return decodeCodePoint(name, name[2:], 16)
	case strings.HasPrefix(name, "#"):
		return decodeCodePoint(name, name[1:], 10)
	case len(name) > 1 && name[0] == 'u' && isHex(name[1:]):
		return decodeCodePoint(name, name[1:], 16)
	}
	return "&" + name + ";"
}

func decodeCodePoint(name, digits string, base int) string {
	cp, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return name
	}
	return string(rune(cp))
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
