// Package processor drives generation: it renders documents pass by pass for
// every generator, lets the resolution graph settle, then post-processes and
// writes the results.
//
// A document that fails for any generator is reported once and produces no
// output at all. Other documents are unaffected.
package processor

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/docwriter"
	"git.home.luguber.info/inful/docgen/internal/failures"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/metrics"
	"git.home.luguber.info/inful/docgen/internal/model"
	"git.home.luguber.info/inful/docgen/internal/output"
	"git.home.luguber.info/inful/docgen/internal/postprocess"
	"git.home.luguber.info/inful/docgen/internal/render"
	"git.home.luguber.info/inful/docgen/internal/resolution"
	"git.home.luguber.info/inful/docgen/internal/signature"
)

// pending is a rendered document waiting for Finish.
type pending struct {
	doc render.Document
	// writers in generator order
	writers []*docwriter.Writer
}

// Processor fans documents out to generators. It is not safe for concurrent use.
type Processor struct {
	generators []generator.Generator
	table      *model.Table
	resolver   *signature.Resolver
	graph      *resolution.Graph
	renderer   *render.Renderer
	pipeline   *postprocess.Pipeline
	sink       output.Sink
	store      failures.Store
	recorder   metrics.Recorder
	logger     *slog.Logger

	runID       string
	namespace   string
	syntax      render.Syntax
	extension   string
	verifyLinks bool

	pass     int
	started  time.Time
	docs     []*pending
	seen     map[string]bool
	failures map[string]error
	order    []string
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSink sets where documents are written. The default keeps them in memory.
func WithSink(s output.Sink) Option {
	return func(p *Processor) { p.sink = s }
}

// WithFailureStore records failed documents permanently.
func WithFailureStore(s failures.Store) Option {
	return func(p *Processor) { p.store = s }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithPipeline sets the post-processing pipeline.
func WithPipeline(pl *postprocess.Pipeline) Option {
	return func(p *Processor) { p.pipeline = pl }
}

// WithSyntax selects the output markup.
func WithSyntax(s render.Syntax) Option {
	return func(p *Processor) { p.syntax = s }
}

// WithExtension sets the extension of package document file names.
func WithExtension(ext string) Option {
	return func(p *Processor) { p.extension = ext }
}

// WithDefaultNamespace sets the package searched last for simple type names.
func WithDefaultNamespace(ns string) Option {
	return func(p *Processor) { p.namespace = ns }
}

// WithRunID sets the identifier failures are recorded under.
func WithRunID(id string) Option {
	return func(p *Processor) { p.runID = id }
}

// WithLinkVerification reports links between generated markdown documents
// whose target was not generated.
func WithLinkVerification(enabled bool) Option {
	return func(p *Processor) { p.verifyLinks = enabled }
}

// New creates a processor for the given generators.
func New(gens []generator.Generator, opts ...Option) *Processor {
	p := &Processor{
		generators: gens,
		table:      model.NewTable(),
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
		namespace:  config.DefaultNamespace,
		syntax:     render.AsciiDoc,
		extension:  config.DefaultExtension,
		seen:       make(map[string]bool),
		failures:   make(map[string]error),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = failures.NewRunID()
	}
	if p.sink == nil {
		p.sink = output.NewMemorySink()
	}
	if p.pipeline == nil {
		p.pipeline = postprocess.NewPipeline(nil)
	}
	p.logger = p.logger.With(logfields.RunID(p.runID))
	p.resolver = signature.New(p.table, signature.WithDefaultNamespace(p.namespace))
	p.graph = resolution.New(p.resolver, resolution.WithLogger(p.logger))
	p.renderer = render.New(p.graph, p.table,
		render.WithSyntax(p.syntax),
		render.WithExtension(p.extension),
		render.WithLogger(p.logger))
	return p
}

// RunID returns the identifier of this run.
func (p *Processor) RunID() string { return p.runID }

// Table returns the symbol table accumulated over all passes.
func (p *Processor) Table() *model.Table { return p.table }

// Graph returns the resolution graph.
func (p *Processor) Graph() *resolution.Graph { return p.graph }

// Pass adds the symbols of table, renders docs for every generator and runs a
// resolution checkpoint. References that stay unresolved may still resolve in
// a later pass.
func (p *Processor) Pass(ctx context.Context, table *model.Table, docs []render.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.pass == 0 {
		p.started = time.Now()
	}
	p.pass++
	start := time.Now()
	logger := p.logger.With(logfields.Pass(p.pass))

	if table != nil && table != p.table {
		if err := p.table.Merge(table); err != nil {
			return err
		}
	}
	env := generator.Env{Table: p.table, Resolver: p.resolver, Logger: p.logger}
	for _, gen := range p.generators {
		if err := gen.Init(env); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "generator initialization failed").
				WithContext("generator", gen.Name()).
				Build()
		}
	}

	rendered := 0
	for _, doc := range docs {
		if p.seen[doc.ID()] {
			logger.Warn("Document already processed", logfields.Document(doc.ID()))
			continue
		}
		p.seen[doc.ID()] = true
		if pd := p.renderDocument(ctx, doc); pd != nil {
			p.docs = append(p.docs, pd)
			rendered++
		}
	}

	resolved := p.graph.Checkpoint()
	p.recorder.AddResolved(resolved)
	p.recorder.ObservePassDuration(time.Since(start))
	logger.Info("Pass complete",
		logfields.Count(rendered),
		slog.Int("resolved", resolved),
		slog.Int("pending", len(p.graph.Unresolved())),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

func (p *Processor) renderDocument(ctx context.Context, doc render.Document) *pending {
	pd := &pending{doc: doc}
	for _, gen := range p.generators {
		w, err := p.renderer.Render(doc, gen)
		if err != nil {
			p.fail(ctx, doc.ID(), gen.Name(), err)
			return nil
		}
		pd.writers = append(pd.writers, w)
	}
	return pd
}

// Report summarizes a finished run.
type Report struct {
	RunID string
	// Written lists the output locations in write order.
	Written []string
	// Failed lists the failed document IDs in the order they failed.
	Failed []string
	// Errors holds the first error of each failed document.
	Errors map[string]error
	// Unresolved lists signatures nothing could resolve.
	Unresolved  []string
	BrokenLinks int
}

// written is one output kept for link verification.
type written struct {
	gen     string
	relPath string
	content string
}

// Finish drains the resolution graph, then post-processes and writes every
// document that did not fail.
func (p *Processor) Finish(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved := p.graph.Drain()
	p.recorder.AddResolved(resolved)

	report := &Report{RunID: p.runID}
	for _, e := range p.graph.Unresolved() {
		report.Unresolved = append(report.Unresolved, e.Signature)
		p.logger.Debug("Signature unresolved",
			logfields.Signature(e.Signature),
			logfields.Document(e.Origin))
	}
	p.recorder.SetUnresolved(len(report.Unresolved))

	var outputs []written
	for _, pd := range p.docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, failed := p.failures[pd.doc.ID()]; failed {
			continue
		}
		contents, ok := p.finalize(ctx, pd)
		if !ok {
			continue
		}
		for i, gen := range p.generators {
			rel := pd.doc.RelativeFileName(gen)
			loc, err := p.sink.Write(gen.Name(), rel, contents[i])
			if err != nil {
				p.fail(ctx, pd.doc.ID(), gen.Name(), err)
				break
			}
			p.recorder.IncDocument(gen.Name(), metrics.OutcomeWritten)
			report.Written = append(report.Written, loc)
			outputs = append(outputs, written{gen: gen.Name(), relPath: rel, content: contents[i]})
			p.logger.Debug("Document written",
				logfields.Document(pd.doc.ID()),
				logfields.Generator(gen.Name()),
				logfields.Path(loc))
		}
	}

	if p.verifyLinks {
		report.BrokenLinks = p.verify(outputs)
	}
	report.Failed = append(report.Failed, p.order...)
	report.Errors = p.Failures()

	p.recorder.ObserveRunDuration(time.Since(p.started))
	p.logger.Info("Generation finished",
		slog.Int("written", len(report.Written)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("unresolved", len(report.Unresolved)),
		logfields.DurationMS(float64(time.Since(p.started).Milliseconds())))
	return report, nil
}

// finalize renders the writers of a document and post-processes the text.
// It returns false when the document failed.
func (p *Processor) finalize(ctx context.Context, pd *pending) ([]string, bool) {
	contents := make([]string, len(p.generators))
	for i, gen := range p.generators {
		text, err := pd.writers[i].Render()
		if err != nil {
			p.fail(ctx, pd.doc.ID(), gen.Name(), err)
			return nil, false
		}
		text, err = p.pipeline.Apply(gen.Name(), text)
		if err != nil {
			p.fail(ctx, pd.doc.ID(), gen.Name(), err)
			return nil, false
		}
		contents[i] = text
	}
	return contents, true
}

// Failures returns the failed documents and the first error each one hit.
func (p *Processor) Failures() map[string]error {
	out := make(map[string]error, len(p.failures))
	for k, v := range p.failures {
		out[k] = v
	}
	return out
}

// fail records the first failure of a document.
func (p *Processor) fail(ctx context.Context, docID, genName string, err error) {
	if _, dup := p.failures[docID]; dup {
		return
	}
	p.failures[docID] = err
	p.order = append(p.order, docID)

	category := errors.GetCategory(err)
	p.recorder.IncFailure(string(category))
	p.recorder.IncDocument(genName, metrics.OutcomeFailed)
	p.logger.Error("Document generation failed",
		logfields.Document(docID),
		logfields.Generator(genName),
		logfields.Category(string(category)),
		logfields.Error(err))

	if p.store == nil {
		return
	}
	rec := failures.Record{
		RunID:     p.runID,
		Document:  docID,
		Generator: genName,
		Category:  string(category),
		Message:   err.Error(),
	}
	if serr := p.store.Append(ctx, rec); serr != nil {
		p.logger.Warn("Failed to record document failure",
			logfields.Document(docID),
			logfields.Error(serr))
	}
}
