package processor

import (
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/markdown"
)

// verify logs links between generated documents whose target was not
// generated for the same generator, and returns how many it found.
func (p *Processor) verify(outputs []written) int {
	generated := make(map[string]map[string]bool)
	for _, o := range outputs {
		if generated[o.gen] == nil {
			generated[o.gen] = make(map[string]bool)
		}
		generated[o.gen][o.relPath] = true
	}

	total := 0
	for _, o := range outputs {
		exists := func(rel string) bool { return generated[o.gen][rel] }
		for _, dest := range markdown.BrokenLinks([]byte(o.content), o.relPath, p.extension, exists) {
			total++
			p.recorder.IncBrokenLink(o.gen)
			p.logger.Warn("Link to a document that was not generated",
				logfields.Generator(o.gen),
				logfields.Path(o.relPath),
				logfields.Signature(dest))
		}
	}
	return total
}
