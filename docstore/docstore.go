//go:generate go run go.uber.org/mock/mockgen -source=docstore.go -destination=../mocks/mock_docstore.go -package=mocks

// Package docstore exposes the generic reactive document store every other
// component persists through. Collections are path-like names, documents
// are schemaless JSON objects, and updates use merge semantics so that
// concurrent writers touching different fields never clobber each other's
// work.
package docstore

import "context"

// Document is one stored record: its collection, its id, and the decoded
// JSON payload.
type Document struct {
	Collection string
	ID         string
	Data       map[string]any
}

// Predicate filters documents at query time. A nil predicate matches all.
type Predicate func(Document) bool

// OrderBy sorts query results on one numeric or string field.
type OrderBy struct {
	Field string
	Desc  bool
}

// Store is the persistence collaborator. Implementations provide
// last-write-wins semantics and no cross-document transactions; all
// callers are written to be idempotent and order tolerant.
type Store interface {
	// Get returns one document, or errors.ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Query returns matching documents, sorted when order is non-nil,
	// capped at limit when limit > 0.
	Query(ctx context.Context, collection string, pred Predicate, order *OrderBy, limit int) ([]Document, error)
	// Create stores a new document under a generated id and returns the id.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	// Update applies a merge patch to a document. Nested maps merge
	// recursively, a nil value removes its field, and a missing document
	// is created, the same shape as a set-with-merge.
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	// Delete removes a document. Deleting a missing document is a no-op.
	Delete(ctx context.Context, collection, id string) error
	// Subscribe streams every created or updated document of a collection
	// to fn until ctx is canceled. It blocks, so callers run it as a
	// supervised worker.
	Subscribe(ctx context.Context, collection string, fn func(Document)) error
}

// String reads a string field, returning "" when absent or mistyped.
func (d Document) String(field string) string {
	s, _ := d.Data[field].(string)
	return s
}

// Bool reads a boolean field.
func (d Document) Bool(field string) bool {
	b, _ := d.Data[field].(bool)
	return b
}

// Int64 reads a numeric field. JSON decoding hands numbers back as
// float64, but freshly written in-process values may still be integers.
func (d Document) Int64(field string) int64 {
	switch n := d.Data[field].(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
