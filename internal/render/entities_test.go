package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnescapeEntity(t *testing.T) {
	cases := map[string]string{
		"#92":     "\\",
		"u00A7":   "§",
		"#x020AC": "€",
		"nbsp":    "&nbsp;",
		"uuml":    "&uuml;",
		"":        "",
		"\t":      "",
		"#t":      "#t",
		"#":       "#",
		"#x":      "#x",
	}
	for in, want := range cases {
		assert.Equal(t, want, unescapeEntity(in), in)
	}
}
