package entities

import (
	"fmt"
	"strings"
)

// AuthenticationError means the remote store rejected the credentials. It is fatal.
type AuthenticationError struct {
	Endpoint string
	Status   string // clientlogin status, e.g. FAIL
	Message  string
}

func (e *AuthenticationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("authentication against %s failed (%s): %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("authentication against %s failed (%s)", e.Endpoint, e.Status)
}

// ParseError means the ontology file could not be read. It is fatal.
type ParseError struct {
	File    string
	Subject string // offending subject, if known
	Err     error
}

func (e *ParseError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("parsing %s: subject %s: %v", e.File, e.Subject, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RemoteWriteError is a failed API call for a single entity. The run continues.
type RemoteWriteError struct {
	IRI        string
	Action     string // create, update, claims, lookup
	Code       string // API error code, if the API answered
	ConflictID string // ID of an existing entity holding the same label, if reported
	Err        error
}

func (e *RemoteWriteError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %v", e.Action, e.IRI, e.Err)
	if e.ConflictID != "" {
		fmt.Fprintf(&b, " (conflicts with %s)", e.ConflictID)
	}
	return b.String()
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// DuplicateMatchError means more than one remote entity matched a stable identifier.
type DuplicateMatchError struct {
	IRI       string
	RemoteIDs []string
	OtherIRI  string // set when one remote entity matched two identifiers
}

func (e *DuplicateMatchError) Error() string {
	if e.OtherIRI != "" {
		return fmt.Sprintf("remote entity %s matches both %s and %s", strings.Join(e.RemoteIDs, ", "), e.OtherIRI, e.IRI)
	}
	return fmt.Sprintf("%s matches several remote entities: %s", e.IRI, strings.Join(e.RemoteIDs, ", "))
}
