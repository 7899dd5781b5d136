package ingest

import (
	"errors"
	"fmt"
)

// ErrIdentityConflict is returned by Store.Insert when the identity
// fingerprint is already present. The merge writer treats it as an exact
// duplicate outcome, not a failure.
var ErrIdentityConflict = errors.New("identity fingerprint already stored")

// MalformedRecordError marks a raw record that failed validation after
// source defaults were applied. The record is dropped; the batch continues.
type MalformedRecordError struct {
	Source     string
	ExternalID string
	Field      string
}

func (e *MalformedRecordError) Error() string {
	if e.ExternalID != "" {
		return fmt.Sprintf("malformed record from %s (external id %s): empty %s", e.Source, e.ExternalID, e.Field)
	}
	return fmt.Sprintf("malformed record from %s: empty %s", e.Source, e.Field)
}

// WriteError records a per-record storage failure inside a batch.
type WriteError struct {
	ListingID string
	Identity  string
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write listing %s (identity %s): %v", e.ListingID, e.Identity, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
