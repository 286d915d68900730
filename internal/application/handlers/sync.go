// Package handlers wires use cases to the domain services.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/osegermany/ont2wb/internal/domain/entities"
	"github.com/osegermany/ont2wb/internal/domain/ports"
	"github.com/osegermany/ont2wb/internal/domain/services"
	"github.com/osegermany/ont2wb/internal/infrastructure/parsers"
)

// SyncHandler handles synchronizing an ontology file into WikiBase.
type SyncHandler struct {
	store   ports.RemoteStore
	service *services.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(store ports.RemoteStore, service *services.SyncService) *SyncHandler {
	return &SyncHandler{
		store:   store,
		service: service,
	}
}

// SyncOptions controls sync behavior.
type SyncOptions struct {
	Format              string // "turtle", "ntriples", or "auto"
	Username            string
	Password            string
	DryRun              bool   // Plan without writing
	Language            string // Label language used for matching
	SourceIRIProperty   string
	PredicateProperties map[string]string
}

// SyncResult contains the result of a sync operation.
type SyncResult struct {
	RunID    string
	Entities int // Entities read from the file
	Summary  entities.SyncSummary
}

// Handle authenticates, parses the ontology and synchronizes it.
// Authentication and parse failures are returned as errors; failures of
// single entities are part of the summary.
func (h *SyncHandler) Handle(ctx context.Context, filePath string, opts SyncOptions) (*SyncResult, error) {
	if err := h.login(ctx, opts); err != nil {
		return nil, err
	}

	ont, err := parseOntology(filePath, opts.Format)
	if err != nil {
		return nil, err
	}
	counts := ont.CountByKind()
	slog.Info("Parsed ontology",
		"file", filePath,
		"classes", counts[entities.KindClass],
		"properties", counts[entities.KindProperty],
		"individuals", counts[entities.KindIndividual],
	)

	result, err := h.service.Sync(ctx, ont, services.SyncOptions{
		DryRun:              opts.DryRun,
		Language:            opts.Language,
		SourceFile:          filePath,
		SourceIRIProperty:   opts.SourceIRIProperty,
		PredicateProperties: opts.PredicateProperties,
	})
	if result == nil {
		return nil, err
	}

	return &SyncResult{
		RunID:    result.RunID,
		Entities: len(ont.Entities),
		Summary:  result.Summary,
	}, err
}

func (h *SyncHandler) login(ctx context.Context, opts SyncOptions) error {
	if opts.Username == "" {
		if opts.DryRun {
			// Reads do not need a session.
			return nil
		}
		return &entities.AuthenticationError{Endpoint: h.store.Endpoint(), Status: "MISSING", Message: "no username given"}
	}

	err := h.store.Login(ctx, opts.Username, opts.Password)
	if err == nil {
		return nil
	}
	var authErr *entities.AuthenticationError
	if errors.As(err, &authErr) {
		return err
	}
	return fmt.Errorf("authenticating: %w", err)
}

func parseOntology(filePath, format string) (*entities.Ontology, error) {
	var parser parsers.OntologyParser
	if format == "" || format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(format)
	}

	if parser == nil {
		return nil, &entities.ParseError{File: filePath, Err: errors.New("unsupported format")}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, &entities.ParseError{File: filePath, Err: err}
	}
	defer file.Close()

	return parser.Parse(file, filePath)
}
