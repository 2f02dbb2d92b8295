package store

import (
	"context"
	"errors"
)

// Collection names used by the application.
const (
	CollectionProfiles  = "profiles"
	CollectionStudyData = "studyData"
)

// ErrNotFound is returned by Get when no document exists for the key.
// A read miss is a normal condition (e.g. no study data for a date yet)
// and callers treat it as "all zero", not as a failure.
var ErrNotFound = errors.New("store: document not found")

// Document is a flat field map. Values are limited to string, int,
// int64 and bool so every backend can store them without conversion.
type Document map[string]interface{}

// Int reads an integer field, tolerating the int64 the Mongo driver
// returns for numeric values. Missing or mistyped fields read as 0.
func (d Document) Int(key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (d Document) String(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

func (d Document) Bool(key string) bool {
	if v, ok := d[key].(bool); ok {
		return v
	}
	return false
}

// Gateway is the persistence contract: a remote document store holding
// per-user documents addressed by (userID, collection, key). Profile
// documents use the user id itself as key; study documents use the
// "2006-01-02" date string.
type Gateway interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, userID, collection, key string) (Document, error)
	// Set writes the full document, replacing any previous version.
	Set(ctx context.Context, userID, collection, key string, fields Document) error
	// Update merges fields into an existing document, creating it if absent.
	Update(ctx context.Context, userID, collection, key string, fields Document) error
	// Delete removes a single document. Deleting a missing document is not an error.
	Delete(ctx context.Context, userID, collection, key string) error
	// DeleteUser removes every document belonging to the user across all
	// collections. Used by the account-deletion cascade.
	DeleteUser(ctx context.Context, userID string) error
}
