// Package storage implements the storage backend contract of §6 and the
// append-only entity segment log. It keeps the teacher's segment-rotation bootstrap logic but
// generalizes it from "exactly one active segment" to "any number of
// named objects", so the same package serves both the entity mutation
// log (segment-rotated, append-only) and whole named objects such as the
// engine's persisted index state.
package storage

import "context"

// Info is the metadata Stat returns about a stored object.
type Info struct {
	Path    string
	Size    int64
	ModTime int64 // Unix nanoseconds
}

// Backend is the storage contract §6 calls out: six operations any
// durable object store - local disk, or otherwise - must provide for the
// engine to run against it.
type Backend interface {
	// Write stores data at path, creating or overwriting it.
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the full contents stored at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether path has been written.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes path. Deleting a path that doesn't exist is a no-op.
	Delete(ctx context.Context, path string) error

	// List returns every path with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Stat returns metadata about path without reading its contents.
	Stat(ctx context.Context, path string) (Info, error)
}
