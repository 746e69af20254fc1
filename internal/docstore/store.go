// Package docstore persists consolidation documents. The production
// backend is Google Docs; a MySQL backend stores the same paragraph model
// as JSON.
package docstore

import (
	"context"
	"fmt"

	"opportunity-sync-go/internal/document"
)

// ResolutionError is a row-fatal failure to resolve or create a document.
type ResolutionError struct {
	Handle string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Handle != "" {
		return fmt.Sprintf("failed to resolve document %s: %v", e.Handle, e.Err)
	}
	return fmt.Sprintf("failed to create document: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Store is the document host collaborator.
type Store interface {
	// GetOrCreate opens the document by handle, or creates a new document
	// named name when the handle is empty or unresolvable. It reports
	// whether a new document was created.
	GetOrCreate(ctx context.Context, handle, name string) (string, bool, error)
	Load(ctx context.Context, handle string) (*document.Document, error)
	Save(ctx context.Context, handle string, doc *document.Document) error
}
