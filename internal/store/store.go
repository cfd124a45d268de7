// Package store provides the small synchronous key-value storage the
// last-city cache persists into.
package store

import "errors"

var (
	// ErrNotFound is returned when no value is stored under the key.
	ErrNotFound = errors.New("no value stored for key")
)

// KV is the contract every storage backend satisfies. Calls are synchronous;
// callers treat every returned error other than ErrNotFound as "storage
// unavailable".
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
