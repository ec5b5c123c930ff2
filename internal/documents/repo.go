package documents

import "context"

// Repo defines persistence operations for document records.
type Repo interface {
	// Insert stores doc and returns it with ID and UploadedAt assigned by the store.
	Insert(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	// List returns every record, newest upload first.
	List(ctx context.Context) ([]Document, error)
	UpdateSummary(ctx context.Context, id, summary, language string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}
