// Package config loads the docgen YAML configuration.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// Config represents the application configuration.
type Config struct {
	Output     OutputConfig      `yaml:"output"`
	Models     []string          `yaml:"models"`  // One model file per pass, in order
	Sources    []string          `yaml:"sources"` // Standalone text documents: files, directories or globs
	Generators []GeneratorConfig `yaml:"generators"`
	Variables  map[string]string `yaml:"variables,omitempty"`
	Resolver   ResolverConfig    `yaml:"resolver"`
	Failures   FailuresConfig    `yaml:"failures,omitempty"`
	Metrics    MetricsConfig     `yaml:"metrics,omitempty"`
	Git        GitConfig         `yaml:"git,omitempty"`
	Watch      WatchConfig       `yaml:"watch,omitempty"`
}

// Output syntaxes.
const (
	SyntaxAsciidoc = "asciidoc"
	SyntaxMarkdown = "markdown"
)

// Generator types.
const (
	GeneratorAPIDocs  = "apidocs"
	GeneratorTemplate = "template"
)

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory   string `yaml:"directory"` // $lang is replaced by the generator name
	Extension   string `yaml:"extension"`
	Syntax      string `yaml:"syntax"`
	Fingerprint bool   `yaml:"fingerprint,omitempty"`  // Markdown only
	VerifyLinks bool   `yaml:"verify_links,omitempty"` // Markdown only
}

// GeneratorConfig configures one output generator.
type GeneratorConfig struct {
	Type            string          `yaml:"type"`
	Name            string          `yaml:"name"`
	BaseURL         string          `yaml:"base_url,omitempty"`
	ExternalBaseURL string          `yaml:"external_base_url,omitempty"`
	Templates       TemplatesConfig `yaml:"templates,omitempty"`
	Replacements    []Replacement   `yaml:"replacements,omitempty"`
}

// TemplatesConfig holds text/template sources for the template generator.
type TemplatesConfig struct {
	Type        string `yaml:"type,omitempty"`
	Constructor string `yaml:"constructor,omitempty"`
	Method      string `yaml:"method,omitempty"`
	Field       string `yaml:"field,omitempty"`
	Label       string `yaml:"label,omitempty"`
	FileName    string `yaml:"file_name,omitempty"`
}

// Replacement rewrites example source for a generator.
type Replacement struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// ResolverConfig configures signature resolution.
type ResolverConfig struct {
	DefaultNamespace string `yaml:"default_namespace"`
}

// FailuresConfig configures the persistent failure record.
type FailuresConfig struct {
	Database string `yaml:"database,omitempty"` // Empty disables the record
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // Prometheus text exposition file
}

// GitConfig configures the ${git.commit} and ${git.branch} variables.
type GitConfig struct {
	Repository string `yaml:"repository,omitempty"` // Empty disables git variables
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Paths    []string      `yaml:"paths,omitempty"`    // Extra paths to watch
	Interval time.Duration `yaml:"interval,omitempty"` // Also regenerate periodically
	Cron     string        `yaml:"cron,omitempty"`     // Also regenerate on a cron schedule
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	// #nosec G304 -- the config path is chosen by the user.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration data, expanding environment variables first.
// $lang and regular expression group references such as $1 are kept.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Output: OutputConfig{
			Directory: "./generated-docs/$lang",
			Extension: DefaultExtension,
			Syntax:    SyntaxAsciidoc,
		},
		Models:  []string{"model/core.yaml", "model/generated.yaml"},
		Sources: []string{"src/main/asciidoc"},
		Generators: []GeneratorConfig{
			{Type: GeneratorAPIDocs, Name: "java", BaseURL: DefaultAPIDocsBaseURL},
			{
				Type: GeneratorTemplate,
				Name: "kotlin",
				Templates: TemplatesConfig{
					Type:   "https://example.com/kdoc/{{.Path}}.html",
					Method: "https://example.com/kdoc/{{.OwnerPath}}.html#{{.Name}}",
				},
				Replacements: []Replacement{{Pattern: `;\s*$`, Replace: ""}},
			},
		},
		Variables: map[string]string{"version": "${VERSION}"},
		Resolver:  ResolverConfig{DefaultNamespace: DefaultNamespace},
		Failures:  FailuresConfig{Database: ".docgen/failures.db"},
		Git:       GitConfig{Repository: "."},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	// #nosec G306 -- the config file is meant to be readable.
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
