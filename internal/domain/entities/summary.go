package entities

// EntityFailure records why a single entity could not be synchronized.
type EntityFailure struct {
	IRI string `json:"iri"`
	Err error  `json:"-"`
}

// SyncSummary is the outcome of a run.
type SyncSummary struct {
	Created          int             `json:"created"`
	Updated          int             `json:"updated"`
	Unchanged        int             `json:"unchanged"`
	Failed           int             `json:"failed"`
	RelationsWritten int             `json:"relations_written"`
	RelationsSkipped int             `json:"relations_skipped"`
	Failures         []EntityFailure `json:"-"`
}

// HasFailures reports whether any entity failed to synchronize.
func (s *SyncSummary) HasFailures() bool {
	return s.Failed > 0
}

// Total returns the number of entities the run considered.
func (s *SyncSummary) Total() int {
	return s.Created + s.Updated + s.Unchanged + s.Failed
}
