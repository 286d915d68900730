// Package parsers reads ontology sources and OKH manifests.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/osegermany/ont2wb/internal/domain/entities"
)

// OntologyParser defines the interface for reading an ontology from a source format.
type OntologyParser interface {
	Parse(r io.Reader, source string) (*entities.Ontology, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "turtle", "ttl", "ntriples", "nt".
func ForFormat(format string) OntologyParser {
	switch strings.ToLower(format) {
	case "turtle", "ttl", "ntriples", "nt":
		// N-Triples is a subset of Turtle.
		return &TurtleParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) OntologyParser {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ForFormat(ext)
}
