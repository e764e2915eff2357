package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kspt-johs/disir-go/registry"
)

// Store implements registry.Store against the disir_documents /
// disir_document_revisions tables created by registry/migrations.
type Store struct {
	pool Conn
}

// NewStore wraps an already-connected Pool as a registry.Store.
func NewStore(pool Conn) *Store {
	return &Store{pool: pool}
}

var _ registry.Store = (*Store)(nil)

func (s *Store) Put(ctx context.Context, doc registry.Document, expectedRevision int64) (registry.Document, error) {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return registry.Document{}, err
	}
	defer tx.rollback(ctx)

	var id string
	var currentRevision int64
	err = tx.tx.QueryRow(ctx,
		`SELECT id, revision FROM disir_documents WHERE namespace = $1 AND name = $2 AND kind = $3`,
		doc.Namespace, doc.Name, doc.Kind).Scan(&id, &currentRevision)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if expectedRevision != 0 {
			return registry.Document{}, registry.ErrConflict
		}
		id = uuid.NewString()
		doc.ID = id
		doc.Revision = 1
		if _, err := tx.tx.Exec(ctx,
			`INSERT INTO disir_documents (id, namespace, name, kind, format, bytes, revision, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
			id, doc.Namespace, doc.Name, doc.Kind, doc.Format, doc.Bytes, doc.Revision); err != nil {
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
		if _, err := tx.tx.Exec(ctx,
			`UPDATE disir_documents SET format = $1, bytes = $2, revision = $3, updated_at = now()
			 WHERE id = $4`,
			doc.Format, doc.Bytes, doc.Revision, id); err != nil {
			return registry.Document{}, fmt.Errorf("update document: %w", err)
		}
	}

	if _, err := tx.tx.Exec(ctx,
		`INSERT INTO disir_document_revisions (document_id, revision, format, bytes, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		id, doc.Revision, doc.Format, doc.Bytes); err != nil {
		return registry.Document{}, fmt.Errorf("insert revision: %w", err)
	}

	if err := tx.commit(ctx); err != nil {
		return registry.Document{}, err
	}
	return doc, nil
}

func (s *Store) Get(ctx context.Context, namespace, name string, kind registry.DocumentKind) (registry.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, namespace, name, kind, format, bytes, revision, created_at, updated_at
		 FROM disir_documents WHERE namespace = $1 AND name = $2 AND kind = $3`,
		namespace, name, kind)
	return scanDocument(row)
}

func (s *Store) GetRevision(ctx context.Context, namespace, name string, kind registry.DocumentKind, revision int64) (registry.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT d.id, d.namespace, d.name, d.kind, r.format, r.bytes, r.revision, r.created_at, r.created_at
		 FROM disir_document_revisions r
		 JOIN disir_documents d ON d.id = r.document_id
		 WHERE d.namespace = $1 AND d.name = $2 AND d.kind = $3 AND r.revision = $4`,
		namespace, name, kind, revision)
	return scanDocument(row)
}

func (s *Store) History(ctx context.Context, namespace, name string, kind registry.DocumentKind) ([]registry.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT d.id, d.namespace, d.name, d.kind, r.format, r.bytes, r.revision, r.created_at, r.created_at
		 FROM disir_document_revisions r
		 JOIN disir_documents d ON d.id = r.document_id
		 WHERE d.namespace = $1 AND d.name = $2 AND d.kind = $3
		 ORDER BY r.revision DESC`,
		namespace, name, kind)
	if err != nil {
		return nil, fmt.Errorf("query revision history: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (s *Store) List(ctx context.Context, namespace string, kind registry.DocumentKind) ([]registry.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, namespace, name, kind, format, bytes, revision, created_at, updated_at
		 FROM disir_documents WHERE namespace = $1 AND kind = $2 ORDER BY name`,
		namespace, kind)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (s *Store) Delete(ctx context.Context, namespace, name string, kind registry.DocumentKind) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM disir_documents WHERE namespace = $1 AND name = $2 AND kind = $3`,
		namespace, name, kind)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return registry.ErrNotFound
	}
	return nil
}

// Close is a no-op: Store does not own the pool's lifecycle, the
// caller that built Pool does.
func (s *Store) Close() error { return nil }

type txHandle struct {
	tx       pgx.Tx
	finished bool
}

func (s *Store) beginTx(ctx context.Context) (*txHandle, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &txHandle{tx: tx}, nil
}

func (h *txHandle) commit(ctx context.Context) error {
	h.finished = true
	if err := h.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (h *txHandle) rollback(ctx context.Context) {
	if h.finished {
		return
	}
	_ = h.tx.Rollback(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (registry.Document, error) {
	var doc registry.Document
	err := row.Scan(&doc.ID, &doc.Namespace, &doc.Name, &doc.Kind, &doc.Format, &doc.Bytes,
		&doc.Revision, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return registry.Document{}, registry.ErrNotFound
	}
	if err != nil {
		return registry.Document{}, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func collectDocuments(rows pgx.Rows) ([]registry.Document, error) {
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
