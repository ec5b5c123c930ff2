package documents

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repo used in development and tests.
type MemoryRepo struct {
	// Now stamps UploadedAt on insert. Defaults to time.Now.
	Now func() time.Time

	mu   sync.RWMutex
	seq  int64
	data map[string]memoryRow
}

type memoryRow struct {
	doc Document
	seq int64
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]memoryRow)}
}

// Insert assigns an ID and upload time and stores the record.
func (r *MemoryRepo) Insert(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.data {
		if row.doc.StorageKey == doc.StorageKey {
			return Document{}, fmt.Errorf("storage key %q already recorded", doc.StorageKey)
		}
	}

	doc.ID = uuid.NewString()
	doc.UploadedAt = r.now()
	r.seq++
	r.data[doc.ID] = memoryRow{doc: doc, seq: r.seq}
	return doc, nil
}

// GetByID returns the record with id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return row.doc, nil
}

// List returns records newest first; records inserted in the same instant keep
// reverse insertion order.
func (r *MemoryRepo) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	rows := make([]memoryRow, 0, len(r.data))
	for _, row := range r.data {
		rows = append(rows, row)
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].doc.UploadedAt.Equal(rows[j].doc.UploadedAt) {
			return rows[i].doc.UploadedAt.After(rows[j].doc.UploadedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.doc)
	}
	return out, nil
}

// UpdateSummary overwrites the summary fields of one record.
func (r *MemoryRepo) UpdateSummary(ctx context.Context, id, summary, language string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.data[id]
	if !ok {
		return 0, nil
	}
	now := r.now()
	row.doc.Summary = summary
	row.doc.SummaryLanguage = language
	row.doc.SummaryUpdatedAt = &now
	r.data[id] = row
	return 1, nil
}

// Delete removes the record with id.
func (r *MemoryRepo) Delete(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return 0, nil
	}
	delete(r.data, id)
	return 1, nil
}

func (r *MemoryRepo) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

var _ Repo = (*MemoryRepo)(nil)
