// Package storage abstracts the primitive key-value store the ledger is
// built on: has/get/set by key, no range scans, no secondary indexes.
// Every mutation runs inside an Update closure whose writes commit
// together or not at all; returning an error from the closure discards
// every write staged during the call.
package storage

import "context"

// KV is the view of the store available inside a transaction closure.
type KV interface {
	Has(key []byte) (bool, error)
	Get(key []byte) (value []byte, ok bool, err error)
	Set(key, value []byte) error
}

type Store interface {
	// View runs fn against a read-only snapshot.
	View(ctx context.Context, fn func(KV) error) error
	// Update runs fn against a writable transaction. All writes made by
	// fn become visible atomically when fn returns nil; any error
	// discards them all.
	Update(ctx context.Context, fn func(KV) error) error
	Close() error
}
