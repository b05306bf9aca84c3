package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{"pkg.Foo", Ref{Raw: "pkg.Foo", Type: "pkg.Foo"}},
		{"pkg.Foo#bar", Ref{Raw: "pkg.Foo#bar", Type: "pkg.Foo", Member: "bar", HasMember: true}},
		{"pkg.Foo#bar()", Ref{Raw: "pkg.Foo#bar()", Type: "pkg.Foo", Member: "bar", HasMember: true, HasParens: true, Params: []string{}}},
		{
			"pkg.Foo#bar(int, java.util.Map<K,V>)",
			Ref{
				Raw: "pkg.Foo#bar(int, java.util.Map<K,V>)", Type: "pkg.Foo", Member: "bar",
				HasMember: true, HasParens: true, Params: []string{"int", "java.util.Map<K,V>"},
			},
		},
		{`a.B\#C#d`, Ref{Raw: `a.B\#C#d`, Type: "a.B#C", Member: "d", HasMember: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "  ", "#bar", "a.B#", "a.B#c(int", "a.B(int)"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalid, in)
	}
}

func TestErase(t *testing.T) {
	tests := map[string]string{
		"int":                        "int",
		"java.util.List<String>":     "java.util.List",
		"Map<String, List<Integer>>": "Map",
		"String...":                  "String[]",
		"int x":                      "int",
		"byte []":                    "byte[]",
		"String[] args":              "String[]",
		"List<":                      "",
		"in-valid":                   "",
		"a..B":                       "",
		"1abc":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, erase(in), in)
	}
}
