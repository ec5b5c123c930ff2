package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"summary-backend/internal/extract"
	"summary-backend/internal/shared/metrics"
	"summary-backend/internal/shared/storage/object"
	"summary-backend/internal/shared/telemetry"
	"summary-backend/internal/shared/util"
)

const defaultCompensationTimeout = 10 * time.Second

// Service keeps blobs and their metadata records consistent across upload and delete.
type Service struct {
	Store object.ObjectStore
	Repo  Repo

	// Now feeds storage key generation. Defaults to time.Now.
	Now func() time.Time
	// CompensationTimeout bounds the cleanup of a blob whose record insert failed.
	CompensationTimeout time.Duration
}

// Upload stores the blob, then records it. A failed insert removes the blob again.
func (s *Service) Upload(ctx context.Context, fileName, contentType string, r io.Reader) (Document, error) {
	const op = "documents.upload"
	if strings.TrimSpace(fileName) == "" {
		return Document{}, wrapError(op, ErrInvalidInput, nil)
	}

	key := util.StorageKey(s.now(), fileName)

	size, err := s.Store.Put(ctx, key, contentType, r)
	if err != nil {
		metrics.IncUpload("storage_error")
		return Document{}, wrapError(op, ErrStorage, err)
	}

	doc, err := s.Repo.Insert(ctx, Document{
		FileName:    fileName,
		FileSize:    size,
		ContentType: contentType,
		StorageKey:  key,
		PublicURL:   s.Store.PublicURL(key),
	})
	if err != nil {
		metrics.IncUpload("persistence_error")
		s.compensate(ctx, key, err)
		return Document{}, wrapError(op, ErrPersistence, err)
	}

	metrics.IncUpload("ok")
	telemetry.Info("documents.uploaded", map[string]any{
		"document_id": doc.ID,
		"storage_key": key,
		"size":        size,
	})
	return doc, nil
}

// compensate removes the blob left behind by a failed insert. It runs detached
// from the request so a canceled client cannot leave an orphan; its own failure
// is only logged.
func (s *Service) compensate(ctx context.Context, key string, cause error) {
	timeout := s.CompensationTimeout
	if timeout <= 0 {
		timeout = defaultCompensationTimeout
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	removed, err := s.Store.Remove(cleanupCtx, []string{key})
	switch {
	case err != nil:
		metrics.IncCompensation("failed")
		telemetry.Error("documents.compensation_failed", map[string]any{
			"storage_key": key,
			"cause":       cause,
			"err":         err,
		})
	case len(removed) == 0:
		metrics.IncCompensation("noop")
		telemetry.Warn("documents.compensation_noop", map[string]any{
			"storage_key": key,
			"cause":       cause,
		})
	default:
		metrics.IncCompensation("ok")
		telemetry.Info("documents.compensated", map[string]any{
			"storage_key": key,
			"cause":       cause,
		})
	}
}

// List returns every record newest first. Object storage is never consulted.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, wrapError("documents.list", ErrPersistence, err)
	}
	return docs, nil
}

// Get returns a single record.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	const op = "documents.get"
	if strings.TrimSpace(id) == "" {
		return Document{}, wrapError(op, ErrNotFound, nil)
	}
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, wrapError(op, ErrNotFound, nil)
		}
		return Document{}, wrapError(op, ErrPersistence, err)
	}
	return doc, nil
}

// Delete removes the blob and then the record. An unknown id touches no blob.
// A blob that is already gone does not block the record delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "documents.delete"

	doc, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.IncDelete("not_found")
		} else {
			metrics.IncDelete("persistence_error")
		}
		return err
	}

	removed, err := s.Store.Remove(ctx, []string{doc.StorageKey})
	if err != nil {
		metrics.IncDelete("storage_error")
		return wrapError(op, ErrStorage, err)
	}
	if len(removed) == 0 {
		telemetry.Warn("documents.delete_blob_missing", map[string]any{
			"document_id": doc.ID,
			"storage_key": doc.StorageKey,
		})
	}

	affected, err := s.Repo.Delete(ctx, doc.ID)
	if err != nil {
		metrics.IncDelete("persistence_error")
		return wrapError(op, ErrPersistence, err)
	}
	if affected < 1 {
		metrics.IncDelete("not_found")
		return wrapError(op, ErrNotFound, nil)
	}

	metrics.IncDelete("ok")
	telemetry.Info("documents.deleted", map[string]any{
		"document_id": doc.ID,
		"storage_key": doc.StorageKey,
	})
	return nil
}

// Text extracts the plain text of a stored document.
func (s *Service) Text(ctx context.Context, id string) (Document, string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return Document{}, "", err
	}
	text, err := extract.FromObject(ctx, s.Store, doc.StorageKey, doc.ContentType, doc.FileName)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Document{}, "", wrapError("documents.text", ErrNotFound, err)
		}
		return doc, "", err
	}
	return doc, text, nil
}

// UpdateSummary persists a summary onto a record.
func (s *Service) UpdateSummary(ctx context.Context, id, summary, language string) error {
	affected, err := s.Repo.UpdateSummary(ctx, id, summary, language)
	if err != nil {
		return wrapError("documents.update_summary", ErrPersistence, err)
	}
	if affected < 1 {
		return wrapError("documents.update_summary", ErrNotFound, nil)
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
