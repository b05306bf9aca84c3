package generator

import (
	"sync"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// Registry holds the active generators in registration order.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
	order      []string
}

// NewRegistry creates a new empty generator registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Register adds a generator. Names must be unique.
func (r *Registry) Register(g Generator) error {
	if g == nil {
		return errors.ValidationError("cannot register nil generator").Build()
	}
	name := g.Name()
	if name == "" {
		return errors.ValidationError("generator name is required").Build()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.generators[name]; exists {
		return errors.ValidationError("generator " + name + " already registered").Build()
	}
	r.generators[name] = g
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a generator by name.
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[name]
	if !ok {
		return nil, errors.ValidationError("generator " + name + " not found").Build()
	}
	return g, nil
}

// List returns the generators in registration order.
func (r *Registry) List() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Generator, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.generators[name])
	}
	return out
}

// Has checks if a generator with the given name exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.generators[name]
	return ok
}

// Count returns the number of registered generators.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// New builds a generator from its configuration.
func New(cfg config.GeneratorConfig) (Generator, error) {
	switch cfg.Type {
	case config.GeneratorAPIDocs, "":
		name, baseURL := cfg.Name, cfg.BaseURL
		if name == "" {
			name = config.DefaultGeneratorName
		}
		if baseURL == "" {
			baseURL = config.DefaultAPIDocsBaseURL
		}
		return NewAPIDocs(name, baseURL, cfg.ExternalBaseURL)
	case config.GeneratorTemplate:
		return NewTemplate(cfg)
	default:
		return nil, errors.ConfigError("unknown generator type " + cfg.Type).Build()
	}
}

// FromConfig registers one generator per configuration entry.
func FromConfig(cfgs []config.GeneratorConfig) (*Registry, error) {
	r := NewRegistry()
	for _, c := range cfgs {
		g, err := New(c)
		if err != nil {
			return nil, err
		}
		if err := r.Register(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}
