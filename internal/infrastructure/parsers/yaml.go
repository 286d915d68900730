package parsers

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLLoader reads OKH manifests into generic documents.
type YAMLLoader struct{}

// Load decodes a manifest. Some manifests prefix values with "@", which is
// reserved in YAML; it is dropped before decoding. An empty manifest yields
// an empty document.
func (l *YAMLLoader) Load(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading YAML: %w", err)
	}

	data = bytes.ReplaceAll(data, []byte(": @"), []byte(": "))

	doc := make(map[string]any)
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	return doc, nil
}
