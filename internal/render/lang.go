package render

import (
	"io"
	"regexp"
)

var langPattern = regexp.MustCompile(`(\\)?\$lang`)

// filterLang writes s to w replacing $lang with lang. An escaped \$lang is
// written as $lang.
func filterLang(w io.StringWriter, s, lang string) {
	prev := 0
	for _, m := range langPattern.FindAllStringSubmatchIndex(s, -1) {
		_, _ = w.WriteString(s[prev:m[0]])
		if m[2] >= 0 {
			_, _ = w.WriteString("$lang")
		} else {
			_, _ = w.WriteString(lang)
		}
		prev = m[1]
	}
	_, _ = w.WriteString(s[prev:])
}
