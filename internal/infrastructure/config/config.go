// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

const (
	// DefaultConfigDir is the directory name for ont2wb configuration.
	DefaultConfigDir = ".ont2wb"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultAPIURL is the WikiBase instance the ontology was first published to.
	DefaultAPIURL = "https://wikibase.oho.wiki/api.php"
	// DefaultOntologyFile is read when no file is given on the command line.
	DefaultOntologyFile = "osh-metadata.ttl"
	// DefaultOKHListURL lists the known OKH manifests.
	DefaultOKHListURL = "https://raw.githubusercontent.com/OpenKnowHow/okh-search/master/projects_okhs.csv"
)

// Config holds static configuration (read-only after load).
type Config struct {
	WikiBase WikiBaseConfig `yaml:"wikibase" validate:"required"`
	Ontology OntologyConfig `yaml:"ontology" validate:"required"`
	// PredicateMap binds predicate IRIs to existing WikiBase properties.
	// Entries are merged over the built-in Wikidata mapping.
	PredicateMap map[string]string `yaml:"predicate_map,omitempty" validate:"dive,keys,required,endkeys,startswith=P"`
	Journal      JournalConfig     `yaml:"journal,omitempty"`
	Metrics      MetricsConfig     `yaml:"metrics,omitempty"`
	Log          LogConfig         `yaml:"log,omitempty"`
	OKH          OKHConfig         `yaml:"okh,omitempty"`
}

// WikiBaseConfig holds connection settings for the api.php endpoint.
type WikiBaseConfig struct {
	APIURL   string `yaml:"api_url" validate:"required,url"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	// Language used to match labels against existing entities.
	Language string `yaml:"language" validate:"required"`
	// SourceIRIProperty is a string property holding the source IRI of synchronized entities.
	// Leave empty to match by label only.
	SourceIRIProperty string        `yaml:"source_iri_property,omitempty" validate:"omitempty,startswith=P"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
}

// OntologyConfig holds the ontology source.
type OntologyConfig struct {
	File string `yaml:"file" validate:"required"`
}

// JournalConfig holds settings for the run journal. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MetricsConfig holds settings for the Prometheus textfile. An empty file disables it.
type MetricsConfig struct {
	File string `yaml:"file,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	// File receives JSON logs in addition to the console.
	File string `yaml:"file,omitempty"`
}

// OKHConfig holds settings for the OKH statistics tool.
type OKHConfig struct {
	ListURL string `yaml:"list_url" validate:"required,url"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		WikiBase: WikiBaseConfig{
			APIURL:   DefaultAPIURL,
			Language: entities.DefaultLanguage,
			Timeout:  30 * time.Second,
		},
		Ontology: OntologyConfig{
			File: DefaultOntologyFile,
		},
		Log: LogConfig{
			Level: "info",
		},
		OKH: OKHConfig{
			ListURL: DefaultOKHListURL,
		},
	}
}

// Load loads configuration from the .ont2wb directory in the given path.
// A missing file is not an error; defaults and environment overrides apply.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	// Start with defaults
	cfg := Default()

	data, err := os.ReadFile(configFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for missing or malformed values.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// PredicateProperties returns the built-in predicate mapping with the configured entries applied.
func (c *Config) PredicateProperties() map[string]string {
	merged := make(map[string]string, len(entities.DefaultPredicateProperties)+len(c.PredicateMap))
	for iri, id := range entities.DefaultPredicateProperties {
		merged[iri] = id
	}
	for iri, id := range c.PredicateMap {
		merged[iri] = id
	}
	return merged
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("WIKIBASE_API_URL"); url != "" {
		c.WikiBase.APIURL = url
	}
	if user := os.Getenv("WIKIBASE_USER"); user != "" {
		c.WikiBase.Username = user
	}
	if pass := os.Getenv("WIKIBASE_PASSWORD"); pass != "" {
		c.WikiBase.Password = pass
	}
}

// ConfigDir returns the path to the .ont2wb config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}
