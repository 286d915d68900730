package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/osegermany/ont2wb/internal/domain/entities"
	"github.com/osegermany/ont2wb/internal/domain/ports"
)

// SyncOptions controls a synchronization run.
type SyncOptions struct {
	DryRun     bool   // Plan without writing
	Language   string // Label language used for matching
	SourceFile string // Recorded in the journal

	// SourceIRIProperty is the property holding the source IRI of an entity.
	// Empty disables both IRI matching and IRI annotation of created entities.
	SourceIRIProperty string

	// PredicateProperties maps predicate IRIs to existing remote properties.
	// Ontology entities whose IRI appears here are never created or edited.
	PredicateProperties map[string]string
}

// SyncResult contains the outcome of a run.
type SyncResult struct {
	RunID   string
	Summary entities.SyncSummary
}

type entityStatus int

const (
	statusPending entityStatus = iota
	statusCreated
	statusUpdated
	statusUnchanged
	statusFailed
)

// runState is everything a run accumulates. It is created per run and handed
// to every step; nothing survives the run.
type runState struct {
	id           string
	opts         SyncOptions
	mapping      *entities.Mapping
	pinned       map[string]bool
	status       map[string]entityStatus
	errs         map[string]error
	relWritten   int
	relSkipped   int
	placeholders int
}

func newRunState(opts SyncOptions) *runState {
	return &runState{
		id:      uuid.New().String(),
		opts:    opts,
		mapping: entities.NewMapping(),
		pinned:  make(map[string]bool),
		status:  make(map[string]entityStatus),
		errs:    make(map[string]error),
	}
}

func (st *runState) failed(iri string) bool {
	return st.status[iri] == statusFailed
}

// SyncService pushes an ontology into a WikiBase instance.
type SyncService struct {
	store   ports.RemoteStore
	journal ports.Journal // optional
	metrics ports.Metrics // optional
}

// NewSyncService creates a new SyncService. journal and metrics may be nil.
func NewSyncService(store ports.RemoteStore, journal ports.Journal, metrics ports.Metrics) *SyncService {
	return &SyncService{
		store:   store,
		journal: journal,
		metrics: metrics,
	}
}

// Sync makes the remote store mirror the ontology. Failures of single entities
// are collected in the summary; the returned error is only set when the run
// was interrupted.
func (s *SyncService) Sync(ctx context.Context, ont *entities.Ontology, opts SyncOptions) (*SyncResult, error) {
	if opts.Language == "" {
		opts.Language = entities.DefaultLanguage
	}
	st := newRunState(opts)
	started := time.Now()

	s.startRun(ctx, st, started)

	err := s.run(ctx, ont, st)

	summary := s.summarize(ont, st)
	s.finishRun(ctx, st, summary, started)

	return &SyncResult{RunID: st.id, Summary: summary}, err
}

func (s *SyncService) run(ctx context.Context, ont *entities.Ontology, st *runState) error {
	if err := s.buildMapping(ctx, ont, st); err != nil {
		return err
	}
	slog.Info("Matched remote entities", "matched", st.mapping.Len(), "total", len(ont.Entities))

	// Pass 1: every entity gets a remote ID.
	for _, e := range ont.Entities {
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.failed(e.IRI) {
			continue
		}
		if st.pinned[e.IRI] {
			st.status[e.IRI] = statusUnchanged
			continue
		}
		if remote, ok := st.mapping.Lookup(e.IRI); ok {
			s.updateEntity(ctx, st, e, remote)
		} else {
			s.createEntity(ctx, st, e)
		}
	}

	// Pass 2: relations, now that both endpoints can be resolved.
	for _, e := range ont.Entities {
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.failed(e.IRI) || st.pinned[e.IRI] {
			continue
		}
		s.writeRelations(ctx, st, e)
	}

	return nil
}

// buildMapping matches every ontology entity against the remote store.
func (s *SyncService) buildMapping(ctx context.Context, ont *entities.Ontology, st *runState) error {
	matched := make(map[string]string, len(ont.Entities))
	var ids []string

	for _, e := range ont.Entities {
		if err := ctx.Err(); err != nil {
			return err
		}

		if propID, ok := st.opts.PredicateProperties[e.IRI]; ok {
			remote := &entities.RemoteEntity{ID: propID, Kind: entities.RemoteProperty}
			if err := st.mapping.Bind(e.IRI, remote); err != nil {
				s.fail(ctx, st, e.IRI, err)
				continue
			}
			st.pinned[e.IRI] = true
			slog.Debug("Entity pinned to predicate property", "iri", e.IRI, "id", propID)
			continue
		}

		candidates, err := s.findCandidates(ctx, st, e)
		if err != nil {
			s.fail(ctx, st, e.IRI, asWriteError(e.IRI, "lookup", err))
			continue
		}

		switch len(candidates) {
		case 0:
		case 1:
			matched[e.IRI] = candidates[0]
			ids = append(ids, candidates[0])
		default:
			s.fail(ctx, st, e.IRI, &entities.DuplicateMatchError{IRI: e.IRI, RemoteIDs: candidates})
		}
	}

	if len(ids) == 0 {
		return nil
	}

	remotes, err := s.store.GetEntities(ctx, ids)
	if err != nil {
		for _, e := range ont.Entities {
			if _, ok := matched[e.IRI]; ok {
				s.fail(ctx, st, e.IRI, asWriteError(e.IRI, "lookup", err))
			}
		}
		return nil
	}

	byID := make(map[string]*entities.RemoteEntity, len(remotes))
	for _, r := range remotes {
		byID[r.ID] = r
	}

	for _, e := range ont.Entities {
		id, ok := matched[e.IRI]
		if !ok {
			continue
		}
		remote, ok := byID[id]
		if !ok {
			s.fail(ctx, st, e.IRI, asWriteError(e.IRI, "lookup", fmt.Errorf("remote entity %s not found", id)))
			continue
		}
		if err := st.mapping.Bind(e.IRI, remote); err != nil {
			s.fail(ctx, st, e.IRI, err)
		}
	}

	return nil
}

// findCandidates returns the distinct remote IDs matching e by source IRI or label.
func (s *SyncService) findCandidates(ctx context.Context, st *runState, e *entities.OntologyEntity) ([]string, error) {
	kind := e.Kind.RemoteKind()
	seen := make(map[string]bool)
	var candidates []string

	add := func(ids []string) {
		for _, id := range ids {
			if k, ok := entities.RemoteKindOf(id); !ok || k != kind || seen[id] {
				continue
			}
			seen[id] = true
			candidates = append(candidates, id)
		}
	}

	if st.opts.SourceIRIProperty != "" {
		ids, err := s.store.SearchBySourceIRI(ctx, st.opts.SourceIRIProperty, e.IRI)
		if err != nil {
			return nil, fmt.Errorf("searching by source IRI: %w", err)
		}
		add(ids)
	}

	if label := e.Label(st.opts.Language); label != "" {
		ids, err := s.store.SearchByLabel(ctx, entities.Truncate(label), st.opts.Language, kind)
		if err != nil {
			return nil, fmt.Errorf("searching by label: %w", err)
		}
		add(ids)
	}

	return candidates, nil
}

// updateEntity sends the labels and descriptions that differ from the remote state.
func (s *SyncService) updateEntity(ctx context.Context, st *runState, e *entities.OntologyEntity, remote *entities.RemoteEntity) {
	edit := diffEntity(e, remote)
	if edit.IsEmpty() {
		st.status[e.IRI] = statusUnchanged
		slog.Debug("Entity up to date", "iri", e.IRI, "id", remote.ID)
		return
	}

	if !st.opts.DryRun {
		if err := s.store.EditEntity(ctx, remote.ID, edit); err != nil {
			s.fail(ctx, st, e.IRI, asWriteError(e.IRI, "update", err))
			return
		}
	}

	applyEdit(remote, edit)
	st.status[e.IRI] = statusUpdated
	slog.Info("Updated entity", "iri", e.IRI, "id", remote.ID, "labels", len(edit.Labels), "descriptions", len(edit.Descriptions))
	s.record(ctx, st, entities.ActionUpdate, e.IRI, remote.ID, map[string]any{
		"labels":       len(edit.Labels),
		"descriptions": len(edit.Descriptions),
	})
}

// createEntity creates e remotely and binds the new ID so later entities can reference it.
func (s *SyncService) createEntity(ctx context.Context, st *runState, e *entities.OntologyEntity) {
	edit := newEntityEdit(e, st.opts.SourceIRIProperty)

	var id string
	if st.opts.DryRun {
		st.placeholders++
		id = fmt.Sprintf("%s-new-%d", edit.Kind.IDPrefix(), st.placeholders)
	} else {
		var err error
		id, err = s.store.CreateEntity(ctx, edit)
		if err != nil {
			s.fail(ctx, st, e.IRI, asWriteError(e.IRI, "create", err))
			return
		}
	}

	remote := &entities.RemoteEntity{
		ID:           id,
		Kind:         edit.Kind,
		Datatype:     edit.Datatype,
		Labels:       edit.Labels,
		Descriptions: edit.Descriptions,
	}
	for _, c := range edit.Claims {
		remote.AddClaim(c)
	}

	if err := st.mapping.Bind(e.IRI, remote); err != nil {
		s.fail(ctx, st, e.IRI, err)
		return
	}

	st.status[e.IRI] = statusCreated
	slog.Info("Created entity", "iri", e.IRI, "id", id, "kind", e.Kind, "label", e.DisplayName())
	s.record(ctx, st, entities.ActionCreate, e.IRI, id, map[string]any{"kind": string(e.Kind)})
}

// writeRelations adds the claims of e that are resolvable and not yet present.
func (s *SyncService) writeRelations(ctx context.Context, st *runState, e *entities.OntologyEntity) {
	remote, ok := st.mapping.Lookup(e.IRI)
	if !ok {
		return
	}

	claims := s.resolveClaims(st, e, remote)
	if len(claims) == 0 {
		return
	}

	if !st.opts.DryRun {
		edit := &entities.EntityEdit{Kind: remote.Kind, Claims: claims}
		if err := s.store.EditEntity(ctx, remote.ID, edit); err != nil {
			s.fail(ctx, st, e.IRI, asWriteError(e.IRI, "claims", err))
			return
		}
	}

	for _, c := range claims {
		remote.AddClaim(c)
		s.observeRelation("written")
	}
	st.relWritten += len(claims)
	if st.status[e.IRI] == statusUnchanged {
		st.status[e.IRI] = statusUpdated
	}

	slog.Info("Added claims", "iri", e.IRI, "id", remote.ID, "count", len(claims))
	s.record(ctx, st, entities.ActionClaims, e.IRI, remote.ID, map[string]any{"count": len(claims)})
}

// resolveClaims turns relations into claims. Relations whose predicate or
// object has no remote ID are skipped.
func (s *SyncService) resolveClaims(st *runState, e *entities.OntologyEntity, remote *entities.RemoteEntity) []entities.Claim {
	var claims []entities.Claim
	seen := make(map[entities.Claim]bool)

	for _, rel := range e.Relations {
		propID, ok := s.resolveProperty(st, rel.Predicate)
		if !ok {
			st.relSkipped++
			s.observeRelation("skipped")
			slog.Debug("Skipping relation without property", "iri", e.IRI, "predicate", rel.Predicate)
			continue
		}

		value, ok := s.resolveValue(st, rel.Object)
		if !ok {
			st.relSkipped++
			s.observeRelation("skipped")
			slog.Debug("Skipping relation to unknown entity", "iri", e.IRI, "predicate", rel.Predicate, "object", rel.Object.IRI)
			continue
		}

		claim := entities.Claim{PropertyID: propID, Value: value}
		if seen[claim] || remote.HasClaim(claim) {
			continue
		}
		seen[claim] = true
		claims = append(claims, claim)
	}

	return claims
}

func (s *SyncService) resolveProperty(st *runState, predicate string) (string, bool) {
	if id, ok := st.opts.PredicateProperties[predicate]; ok {
		return id, true
	}
	id, ok := st.mapping.RemoteID(predicate)
	if !ok {
		return "", false
	}
	if kind, _ := entities.RemoteKindOf(id); kind != entities.RemoteProperty {
		return "", false
	}
	return id, true
}

func (s *SyncService) resolveValue(st *runState, v entities.Value) (entities.ClaimValue, bool) {
	if v.IsLiteral() {
		return entities.ClaimValue{Text: v.Literal}, true
	}
	if id, ok := st.mapping.RemoteID(v.IRI); ok {
		return entities.ClaimValue{EntityID: id}, true
	}
	if id, ok := st.opts.PredicateProperties[v.IRI]; ok {
		return entities.ClaimValue{EntityID: id}, true
	}
	return entities.ClaimValue{}, false
}

func (s *SyncService) fail(ctx context.Context, st *runState, iri string, err error) {
	st.status[iri] = statusFailed
	if _, ok := st.errs[iri]; !ok {
		st.errs[iri] = err
	}
	slog.Error("Entity failed", "iri", iri, "error", err)
	s.record(ctx, st, entities.ActionFail, iri, "", map[string]any{"error": err.Error()})
}

// summarize counts the final status of every entity, in source order.
func (s *SyncService) summarize(ont *entities.Ontology, st *runState) entities.SyncSummary {
	summary := entities.SyncSummary{
		RelationsWritten: st.relWritten,
		RelationsSkipped: st.relSkipped,
	}

	for _, e := range ont.Entities {
		var outcome string
		switch st.status[e.IRI] {
		case statusCreated:
			summary.Created++
			outcome = "created"
		case statusUpdated:
			summary.Updated++
			outcome = "updated"
		case statusUnchanged:
			summary.Unchanged++
			outcome = "unchanged"
		case statusFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, entities.EntityFailure{IRI: e.IRI, Err: st.errs[e.IRI]})
			outcome = "failed"
		default:
			// Not reached when the run was interrupted.
			continue
		}
		if s.metrics != nil {
			s.metrics.ObserveEntity(outcome)
		}
	}

	return summary
}

func (s *SyncService) observeRelation(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveRelation(outcome)
	}
}

func (s *SyncService) startRun(ctx context.Context, st *runState, started time.Time) {
	if s.journal == nil {
		return
	}
	run := &entities.SyncRun{
		ID:         st.id,
		SourceFile: st.opts.SourceFile,
		Endpoint:   s.store.Endpoint(),
		DryRun:     st.opts.DryRun,
		StartedAt:  started,
	}
	if err := s.journal.StartRun(ctx, run); err != nil {
		slog.Warn("Journal unavailable", "error", err)
	}
}

func (s *SyncService) finishRun(ctx context.Context, st *runState, summary entities.SyncSummary, started time.Time) {
	finished := time.Now()
	if s.metrics != nil {
		s.metrics.ObserveRun(summary, finished.Sub(started))
	}
	if s.journal == nil {
		return
	}
	// The run context may already be cancelled; the summary is still worth keeping.
	if err := s.journal.FinishRun(context.WithoutCancel(ctx), st.id, summary, finished); err != nil {
		slog.Warn("Failed to finish journal run", "run", st.id, "error", err)
	}
}

func (s *SyncService) record(ctx context.Context, st *runState, action, iri, remoteID string, details map[string]any) {
	if s.journal == nil {
		return
	}
	entry := &entities.JournalEntry{
		RunID:     st.id,
		Action:    action,
		IRI:       iri,
		RemoteID:  remoteID,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		slog.Warn("Failed to journal action", "action", action, "iri", iri, "error", err)
	}
}

// asWriteError attaches the entity and action to an error returned by the store.
func asWriteError(iri, action string, err error) *entities.RemoteWriteError {
	var we *entities.RemoteWriteError
	if errors.As(err, &we) {
		c := *we
		c.IRI = iri
		if c.Action == "" {
			c.Action = action
		}
		return &c
	}
	return &entities.RemoteWriteError{IRI: iri, Action: action, Err: err}
}
