package config

import (
	"fmt"
	"regexp"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	switch c.Output.Syntax {
	case SyntaxAsciidoc, SyntaxMarkdown:
	default:
		return errors.ConfigError("unknown output syntax " + c.Output.Syntax).
			WithContext("allowed", []string{SyntaxAsciidoc, SyntaxMarkdown}).
			Build()
	}
	if (c.Output.Fingerprint || c.Output.VerifyLinks) && c.Output.Syntax != SyntaxMarkdown {
		return errors.ConfigError("fingerprint and verify_links need markdown output").Build()
	}

	seen := make(map[string]bool, len(c.Generators))
	for i, g := range c.Generators {
		field := fmt.Sprintf("generators[%d]", i)
		switch g.Type {
		case GeneratorAPIDocs, GeneratorTemplate:
		default:
			return errors.ConfigError("unknown generator type " + g.Type).
				WithContext("field", field).
				Build()
		}
		if g.Name == "" {
			return errors.ConfigError("generator name is required").
				WithContext("field", field).
				Build()
		}
		if seen[g.Name] {
			return errors.ConfigError("duplicate generator name " + g.Name).
				WithContext("field", field).
				Build()
		}
		seen[g.Name] = true
		for j, r := range g.Replacements {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				return errors.WrapError(err, errors.CategoryConfig, "invalid replacement pattern").
					WithContext("field", fmt.Sprintf("%s.replacements[%d]", field, j)).
					Build()
			}
		}
	}
	return nil
}
