package config

import "time"

const (
	DefaultOutputDirectory = "./generated-docs/$lang"
	DefaultExtension       = ".adoc"
	DefaultNamespace       = "java.lang"
	DefaultAPIDocsBaseURL  = "../../apidocs/"
	DefaultGeneratorName   = "java"
	DefaultWatchDebounce   = 500 * time.Millisecond
)

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDirectory
	}
	if c.Output.Extension == "" {
		c.Output.Extension = DefaultExtension
	}
	if c.Output.Syntax == "" {
		c.Output.Syntax = SyntaxAsciidoc
	}
	if len(c.Generators) == 0 {
		c.Generators = []GeneratorConfig{{Type: GeneratorAPIDocs}}
	}
	for i := range c.Generators {
		g := &c.Generators[i]
		if g.Type == "" {
			g.Type = GeneratorAPIDocs
		}
		if g.Type == GeneratorAPIDocs {
			if g.Name == "" {
				g.Name = DefaultGeneratorName
			}
			if g.BaseURL == "" {
				g.BaseURL = DefaultAPIDocsBaseURL
			}
		}
	}
	if c.Resolver.DefaultNamespace == "" {
		c.Resolver.DefaultNamespace = DefaultNamespace
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultWatchDebounce
	}
}
