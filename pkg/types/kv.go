package types

import "errors"

// KV is the persistence collaborator used by the inventory store, the
// settings manager, and the form submission recorder. Values are stored as
// whole JSON documents; there are no partial writes.
type KV interface {
	// Get decodes the value stored under key into dst.
	// Returns false and a nil error when the key does not exist.
	// Returns ErrCorruptValue (wrapped) when the stored JSON cannot be decoded.
	Get(key string, dst any) (bool, error)

	// Set encodes value as JSON and stores it under key, replacing any
	// previous value. The write is durable when Set returns.
	Set(key string, value any) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(key string) error

	// Keys returns every stored key with the given prefix in ascending order.
	// An empty prefix returns all keys.
	Keys(prefix string) ([]string, error)
}

// Backend is a KV with an attach/detach lifecycle.
type Backend interface {
	KV

	// Attach connects the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, KV operations return ErrDetached.
	Detach() error
}

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// KV operation errors.
var (
	ErrInvalidKey   = errors.New("invalid key")
	ErrCorruptValue = errors.New("stored value is corrupt")
	ErrPersist      = errors.New("persisting value failed")
)
