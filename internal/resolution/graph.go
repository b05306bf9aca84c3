// Package resolution tracks outstanding reference requests across documents and
// passes, resolving each distinct signature at most once.
package resolution

import (
	"errors"
	"log/slog"

	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/model"
	"git.home.luguber.info/inful/docgen/internal/signature"
)

// Resolver maps a signature to an element. signature.ErrNotFound means the
// signature may still resolve once more symbols are known.
type Resolver interface {
	Resolve(sig string) (*model.Element, error)
}

// Consumer receives the element a signature resolved to.
type Consumer func(*model.Element)

// Entry is the resolution state of one signature.
type Entry struct {
	Signature string
	// Origin identifies the document that first requested the signature.
	Origin string

	element   *model.Element
	consumers []Consumer
}

// Resolved reports whether the signature has been resolved.
func (e *Entry) Resolved() bool { return e.element != nil }

// Element returns the resolved element, or nil.
func (e *Entry) Element() *model.Element { return e.element }

// Pending returns the number of consumers still waiting.
func (e *Entry) Pending() int { return len(e.consumers) }

// Graph is a work queue of memoized resolutions. It is driven by explicit
// checkpoints and is not safe for concurrent use.
type Graph struct {
	resolver Resolver
	logger   *slog.Logger
	entries  map[string]*Entry
	order    []*Entry
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for resolution events.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates an empty graph.
func New(resolver Resolver, opts ...Option) *Graph {
	g := &Graph{
		resolver: resolver,
		logger:   slog.Default(),
		entries:  make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Request registers c to receive the element sig resolves to. When sig is
// already resolved c runs immediately; otherwise it runs during the checkpoint
// that resolves sig.
func (g *Graph) Request(sig, origin string, c Consumer) {
	e, ok := g.entries[sig]
	if !ok {
		e = &Entry{Signature: sig, Origin: origin}
		g.entries[sig] = e
		g.order = append(g.order, e)
	}
	if e.element != nil {
		c(e.element)
		return
	}
	e.consumers = append(e.consumers, c)
}

// Checkpoint tries every unresolved signature once, in request order.
// Signatures requested by consumers during the checkpoint are tried in the same
// checkpoint. It returns the number of signatures newly resolved.
func (g *Graph) Checkpoint() int {
	resolved := 0
	for i := 0; i < len(g.order); i++ {
		e := g.order[i]
		if e.element != nil {
			continue
		}
		el, err := g.resolver.Resolve(e.Signature)
		if err != nil {
			if !errors.Is(err, signature.ErrNotFound) {
				g.logger.Warn("Signature resolution failed",
					logfields.Signature(e.Signature),
					logfields.Document(e.Origin),
					logfields.Error(err))
			}
			continue
		}
		e.element = el
		resolved++
		g.logger.Debug("Resolved signature",
			logfields.Signature(e.Signature),
			logfields.Kind(string(el.Kind)),
			logfields.Count(len(e.consumers)))

		consumers := e.consumers
		e.consumers = nil
		for _, c := range consumers {
			c(el)
		}
	}
	return resolved
}

// Drain runs checkpoints until one resolves nothing and returns the total
// number of signatures resolved.
func (g *Graph) Drain() int {
	total := 0
	for {
		n := g.Checkpoint()
		if n == 0 {
			return total
		}
		total += n
	}
}

// Lookup returns the entry for sig, if any.
func (g *Graph) Lookup(sig string) (*Entry, bool) {
	e, ok := g.entries[sig]
	return e, ok
}

// Unresolved returns the entries still pending, in request order.
func (g *Graph) Unresolved() []*Entry {
	var out []*Entry
	for _, e := range g.order {
		if e.element == nil {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of distinct signatures requested so far.
func (g *Graph) Len() int {
	return len(g.order)
}
