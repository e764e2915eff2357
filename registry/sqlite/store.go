// Package sqlite is disir-server's embedded registry.Store
// implementation, backed by modernc.org/sqlite's pure-Go driver — the
// backend selected by registry.backend "sqlite", which runs without
// Postgres, for local development and CI.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kspt-johs/disir-go/registry"
)

// Store implements registry.Store against a single SQLite file.
type Store struct {
	db *sql.DB
}

var _ registry.Store = (*Store)(nil)

// Open creates (if needed) the registry tables at path and returns a
// ready-to-use Store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite registry: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid SQLITE_BUSY storms

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite registry schema: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS disir_documents (
    id         TEXT PRIMARY KEY,
    namespace  TEXT NOT NULL,
    name       TEXT NOT NULL,
    kind       TEXT NOT NULL CHECK (kind IN ('mold', 'config')),
    format     TEXT NOT NULL CHECK (format IN ('yaml', 'json')),
    bytes      BLOB NOT NULL,
    revision   INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (namespace, name, kind)
);

CREATE TABLE IF NOT EXISTS disir_document_revisions (
    document_id TEXT NOT NULL REFERENCES disir_documents(id) ON DELETE CASCADE,
    revision    INTEGER NOT NULL,
    format      TEXT NOT NULL,
    bytes       BLOB NOT NULL,
    created_at  TEXT NOT NULL,
    PRIMARY KEY (document_id, revision)
);
`

func (s *Store) Put(ctx context.Context, doc registry.Document, expectedRevision int64) (registry.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return registry.Document{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	var currentRevision int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, revision FROM disir_documents WHERE namespace = ? AND name = ? AND kind = ?`,
		doc.Namespace, doc.Name, doc.Kind).Scan(&id, &currentRevision)

	now := time.Now().UTC().Format(time.RFC3339Nano)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		if expectedRevision != 0 {
			return registry.Document{}, registry.ErrConflict
		}
		id = uuid.NewString()
		doc.ID = id
		doc.Revision = 1
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO disir_documents (id, namespace, name, kind, format, bytes, revision, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, doc.Namespace, doc.Name, doc.Kind, doc.Format, doc.Bytes, doc.Revision, now, now); err != nil {
			return registry.Document{}, fmt.Errorf("insert document: %w", err)
		}
	case err != nil:
		return registry.Document{}, fmt.Errorf("look up document: %w", err)
	default:
		if expectedRevision != 0 && expectedRevision != currentRevision {
			return registry.Document{}, registry.ErrConflict
		}
		doc.ID = id
		doc.Revision = currentRevision + 1
		if _, err := tx.ExecContext(ctx,
			`UPDATE disir_documents SET format = ?, bytes = ?, revision = ?, updated_at = ? WHERE id = ?`,
			doc.Format, doc.Bytes, doc.Revision, now, id); err != nil {
			return registry.Document{}, fmt.Errorf("update document: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO disir_document_revisions (document_id, revision, format, bytes, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, doc.Revision, doc.Format, doc.Bytes, now); err != nil {
		return registry.Document{}, fmt.Errorf("insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return registry.Document{}, fmt.Errorf("commit transaction: %w", err)
	}
	return doc, nil
}

func (s *Store) Get(ctx context.Context, namespace, name string, kind registry.DocumentKind) (registry.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, namespace, name, kind, format, bytes, revision, created_at, updated_at
		 FROM disir_documents WHERE namespace = ? AND name = ? AND kind = ?`,
		namespace, name, kind)
	return scanDocument(row)
}

func (s *Store) GetRevision(ctx context.Context, namespace, name string, kind registry.DocumentKind, revision int64) (registry.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT d.id, d.namespace, d.name, d.kind, r.format, r.bytes, r.revision, r.created_at, r.created_at
		 FROM disir_document_revisions r
		 JOIN disir_documents d ON d.id = r.document_id
		 WHERE d.namespace = ? AND d.name = ? AND d.kind = ? AND r.revision = ?`,
		namespace, name, kind, revision)
	return scanDocument(row)
}

func (s *Store) History(ctx context.Context, namespace, name string, kind registry.DocumentKind) ([]registry.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.namespace, d.name, d.kind, r.format, r.bytes, r.revision, r.created_at, r.created_at
		 FROM disir_document_revisions r
		 JOIN disir_documents d ON d.id = r.document_id
		 WHERE d.namespace = ? AND d.name = ? AND d.kind = ?
		 ORDER BY r.revision DESC`,
		namespace, name, kind)
	if err != nil {
		return nil, fmt.Errorf("query revision history: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (s *Store) List(ctx context.Context, namespace string, kind registry.DocumentKind) ([]registry.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, namespace, name, kind, format, bytes, revision, created_at, updated_at
		 FROM disir_documents WHERE namespace = ? AND kind = ? ORDER BY name`,
		namespace, kind)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (s *Store) Delete(ctx context.Context, namespace, name string, kind registry.DocumentKind) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM disir_documents WHERE namespace = ? AND name = ? AND kind = ?`,
		namespace, name, kind)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return registry.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (registry.Document, error) {
	var doc registry.Document
	var createdAt, updatedAt string
	err := row.Scan(&doc.ID, &doc.Namespace, &doc.Name, &doc.Kind, &doc.Format, &doc.Bytes,
		&doc.Revision, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.Document{}, registry.ErrNotFound
	}
	if err != nil {
		return registry.Document{}, fmt.Errorf("scan document: %w", err)
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]registry.Document, error) {
	var docs []registry.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
