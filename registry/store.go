// Package registry defines the storage contract disir-server's HTTP API,
// disirctl, and k8sloader use to persist and retrieve serialized
// Mold/Config documents. Concrete backends (registry/postgres,
// registry/sqlite) implement Store; the core disir package never
// imports this package, per spec.md §1's "process-level instance
// registry is out of scope for the core."
package registry

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a document or version does not exist.
var ErrNotFound = errors.New("registry: document not found")

// ErrConflict is returned when a write would violate the document's
// optimistic concurrency check (stale Revision).
var ErrConflict = errors.New("registry: revision conflict")

// DocumentKind distinguishes a Mold document from a Config document;
// both are stored the same way (name, serialized bytes, version
// history) but are never confused at lookup time.
type DocumentKind string

const (
	KindMold   DocumentKind = "mold"
	KindConfig DocumentKind = "config"
)

// Format names the serialization a document's Bytes are encoded in,
// so a Store never has to guess which plugin decodes it.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is one stored Mold or Config, identified by Namespace+Name,
// at a specific Revision.
type Document struct {
	ID        string
	Namespace string
	Name      string
	Kind      DocumentKind
	Format    Format
	Bytes     []byte
	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists disir Mold/Config documents with a linear per-document
// revision history, so callers can fetch the current document, a past
// revision, or the revision list for audit/diff purposes.
type Store interface {
	// Put creates or updates the document named (namespace, name, kind).
	// When expectedRevision is non-zero, Put fails with ErrConflict if
	// the document's current revision does not match it (optimistic
	// concurrency); zero means "create or overwrite unconditionally."
	Put(ctx context.Context, doc Document, expectedRevision int64) (Document, error)

	// Get returns the current revision of a document.
	Get(ctx context.Context, namespace, name string, kind DocumentKind) (Document, error)

	// GetRevision returns a specific past revision of a document.
	GetRevision(ctx context.Context, namespace, name string, kind DocumentKind, revision int64) (Document, error)

	// History lists revisions for a document, newest first.
	History(ctx context.Context, namespace, name string, kind DocumentKind) ([]Document, error)

	// List returns the current revision of every document of the given
	// kind in a namespace.
	List(ctx context.Context, namespace string, kind DocumentKind) ([]Document, error)

	// Delete removes a document and its full history.
	Delete(ctx context.Context, namespace, name string, kind DocumentKind) error

	// Close releases any underlying connection resources.
	Close() error
}
