package config

import (
	"fmt"
	"os"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# ont2wb configuration

wikibase:
  api_url: https://wikibase.oho.wiki/api.php
  # username: bot-user (or set WIKIBASE_USER env var)
  # password: secret (or set WIKIBASE_PASSWORD env var)
  language: en
  # String property holding the source IRI of each synchronized entity.
  # source_iri_property: P1
  timeout: 30s

ontology:
  file: osh-metadata.ttl

# Extra predicate IRI -> property ID bindings, merged over the built-in Wikidata IDs.
# predicate_map:
#   http://schema.org/license: P275

journal:
  # path: .ont2wb/journal.db

metrics:
  # file: ont2wb.prom

log:
  level: info
  # file: ont2wb.log

okh:
  list_url: https://raw.githubusercontent.com/OpenKnowHow/okh-search/master/projects_okhs.csv
`

// WriteDefault creates the .ont2wb directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Exists checks if an ont2wb config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
