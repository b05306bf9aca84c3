// Package fragment crops example code out of a compilation unit.
package fragment

import (
	"strings"

	"git.home.luguber.info/inful/docgen/internal/model"
)

// Extract returns the whole lines covered by statements, with the smallest
// statement margin removed from every line. It returns false when there are
// no statements.
func Extract(source string, statements []model.Span) (string, bool) {
	if len(statements) == 0 {
		return "", false
	}
	from := clamp(statements[0].Start, len(source))
	to := clamp(statements[len(statements)-1].End, len(source))
	if to < from {
		to = from
	}

	// Widen to whole lines.
	for from > 0 && source[from-1] != '\n' {
		from--
	}
	for to < len(source) && source[to] != '\n' {
		to++
	}

	margin := -1
	for _, st := range statements {
		start := clamp(st.Start, len(source))
		lineStart := strings.LastIndexByte(source[:start], '\n') + 1
		if m := start - lineStart; margin < 0 || m < margin {
			margin = m
		}
	}

	lines := strings.Split(source[from:to], "\n")
	for i, line := range lines {
		lines[i] = line[min(margin, len(line)):]
	}
	return strings.Join(lines, "\n"), true
}

// ExtractElement extracts the example for an executable (its body statements)
// or a type (its whole declaration).
func ExtractElement(el *model.Element, source string) (string, bool) {
	if el.Kind.IsType() {
		if el.Span.End <= el.Span.Start {
			return "", false
		}
		return Extract(source, []model.Span{el.Span})
	}
	return Extract(source, el.Statements)
}

func clamp(v, n int) int {
	return max(0, min(v, n))
}
