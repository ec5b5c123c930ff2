package documents

import (
	"context"
	"time"

	"summary-backend/internal/shared/metrics"
	"summary-backend/internal/shared/telemetry"
)

// ReconcileOptions controls a reconciliation pass.
type ReconcileOptions struct {
	// MinAge protects blobs whose upload may still be inserting its record.
	MinAge time.Duration
	DryRun bool
	// AllowEmpty permits removals when the metadata store holds no records at all.
	AllowEmpty bool
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Blobs          int      `json:"blobs"`
	Records        int      `json:"records"`
	OrphanBlobs    []string `json:"orphanBlobs"`
	RemovedBlobs   []string `json:"removedBlobs"`
	MissingBlobIDs []string `json:"missingBlobIds"`
}

// Reconcile removes blobs no record owns and reports records whose blob is gone.
// Records are never deleted here.
func (s *Service) Reconcile(ctx context.Context, opts ReconcileOptions) (ReconcileReport, error) {
	const op = "documents.reconcile"

	blobs, err := s.Store.List(ctx)
	if err != nil {
		return ReconcileReport{}, wrapError(op, ErrStorage, err)
	}
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return ReconcileReport{}, wrapError(op, ErrPersistence, err)
	}

	report := ReconcileReport{
		Blobs:          len(blobs),
		Records:        len(docs),
		OrphanBlobs:    []string{},
		RemovedBlobs:   []string{},
		MissingBlobIDs: []string{},
	}

	owned := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		owned[doc.StorageKey] = struct{}{}
	}
	present := make(map[string]struct{}, len(blobs))
	cutoff := s.now().Add(-opts.MinAge)
	for _, blob := range blobs {
		present[blob.Key] = struct{}{}
		if _, ok := owned[blob.Key]; ok {
			continue
		}
		if opts.MinAge > 0 && !blob.CreatedAt.IsZero() && blob.CreatedAt.After(cutoff) {
			continue
		}
		report.OrphanBlobs = append(report.OrphanBlobs, blob.Key)
	}
	for _, doc := range docs {
		if _, ok := present[doc.StorageKey]; !ok {
			report.MissingBlobIDs = append(report.MissingBlobIDs, doc.ID)
		}
	}

	if len(report.OrphanBlobs) > 0 && !opts.DryRun {
		if len(docs) == 0 && !opts.AllowEmpty {
			telemetry.Warn("documents.reconcile_refused", map[string]any{
				"blobs":   report.Blobs,
				"orphans": len(report.OrphanBlobs),
			})
			return report, wrapError(op, ErrEmptyIndex, nil)
		}
		removed, err := s.Store.Remove(ctx, report.OrphanBlobs)
		report.RemovedBlobs = append(report.RemovedBlobs, removed...)
		metrics.AddOrphansRemoved(len(removed))
		if err != nil {
			return report, wrapError(op, ErrStorage, err)
		}
	}

	telemetry.Info("documents.reconciled", map[string]any{
		"blobs":        report.Blobs,
		"records":      report.Records,
		"orphans":      len(report.OrphanBlobs),
		"removed":      len(report.RemovedBlobs),
		"missing_blob": len(report.MissingBlobIDs),
		"dry_run":      opts.DryRun,
	})
	return report, nil
}
