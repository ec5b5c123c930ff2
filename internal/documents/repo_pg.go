package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, file_name, file_size, content_type, storage_key, public_url, uploaded_at, summary, summary_language, summary_updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Insert stores a new record; the database assigns id and uploaded_at.
func (r *PGRepo) Insert(ctx context.Context, doc Document) (Document, error) {
	const query = `
INSERT INTO documents (file_name, file_size, content_type, storage_key, public_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, uploaded_at`

	err := r.DB.QueryRowContext(ctx, query,
		doc.FileName,
		doc.FileSize,
		doc.ContentType,
		doc.StorageKey,
		doc.PublicURL,
	).Scan(&doc.ID, &doc.UploadedAt)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// GetByID fetches a record by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns all records ordered newest-first.
func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents ORDER BY uploaded_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateSummary stores the latest summary for a record.
func (r *PGRepo) UpdateSummary(ctx context.Context, id, summary, language string) (int64, error) {
	const query = `
UPDATE documents
SET summary = $1, summary_language = $2, summary_updated_at = now()
WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, summary, language, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a record.
func (r *PGRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var summary sql.NullString
	var language sql.NullString
	var summaryAt sql.NullTime
	if err := row.Scan(
		&doc.ID,
		&doc.FileName,
		&doc.FileSize,
		&doc.ContentType,
		&doc.StorageKey,
		&doc.PublicURL,
		&doc.UploadedAt,
		&summary,
		&language,
		&summaryAt,
	); err != nil {
		return Document{}, err
	}
	if summary.Valid {
		doc.Summary = summary.String
	}
	if language.Valid {
		doc.SummaryLanguage = language.String
	}
	if summaryAt.Valid {
		doc.SummaryUpdatedAt = &summaryAt.Time
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
