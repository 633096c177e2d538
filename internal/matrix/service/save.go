package service

import (
	"context"
	"time"

	"entmatrix/internal/audit"
	"entmatrix/internal/catalog"
	"entmatrix/internal/matrix"
	domainerrors "entmatrix/pkg/domain-errors"
)

// Save submits every dirty cell as one batch and, on success, marks exactly
// the snapshotted cells clean. The batch is all-or-nothing: on failure no
// dirty flag changes and the user retries explicitly. Cells that turn dirty
// while the batch is in flight stay dirty. Returns the number of cells
// submitted; zero with a nil error means there was nothing to save and no
// network call was made.
//
// A second Save while one is outstanding is rejected with a conflict so
// overlapping batches cannot race each other.
func (s *Service) Save(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "matrix.save")
	defer span.End()

	if s.store.Product() == "" {
		return 0, domainerrors.New(domainerrors.CodeConflict, "no active product")
	}
	if !s.saveInFlight.CompareAndSwap(false, true) {
		return 0, domainerrors.New(domainerrors.CodeConflict, "a save is already in flight")
	}
	defer s.saveInFlight.Store(false)

	dirty, gen := s.store.DirtySnapshot()
	if len(dirty) == 0 {
		return 0, nil
	}

	records := make([]catalog.ChangeRecord, 0, len(dirty))
	keys := make([]matrix.Key, 0, len(dirty))
	for _, cell := range dirty {
		item, ok := s.item(cell.ItemID)
		if !ok {
			// A cell can only turn dirty through Toggle, which resolves the
			// item first; an unresolvable id here means the catalog shrank
			// under us. Leave the cell dirty rather than invent a kind.
			s.logger.WarnContext(ctx, "dirty cell references unknown item, skipped",
				"item_id", cell.ItemID,
				"package_id", cell.PackageID,
			)
			continue
		}
		records = append(records, catalog.ChangeRecord{
			ItemKind:  item.Kind,
			ItemID:    cell.ItemID,
			PackageID: cell.PackageID,
			Enabled:   cell.Enabled,
		})
		keys = append(keys, cell.Key)
	}
	if len(records) == 0 {
		return 0, nil
	}

	productID := s.store.Product()
	s.metrics.SavesTotal.Inc()

	start := time.Now()
	err := s.persistence.PersistBatch(ctx, records)
	s.metrics.PersistDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.SaveFailuresTotal.Inc()
		s.emit(audit.Event{
			Action:    audit.ActionBatchFailed,
			ProductID: productID,
			CellCount: len(records),
			Detail:    err.Error(),
		})
		span.RecordError(err)
		return 0, domainerrors.Wrap(domainerrors.CodeUnavailable, "batch save failed", err)
	}

	// Flip exactly the snapshotted cells clean; enabled is untouched. Skipped
	// when the product changed under the in-flight batch.
	if s.store.ClearDirtyIf(gen, keys) {
		s.metrics.CellsSavedTotal.Add(float64(len(keys)))
	}

	s.emit(audit.Event{
		Action:    audit.ActionBatchSaved,
		ProductID: productID,
		CellCount: len(records),
	})

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, productID); err != nil {
			s.logger.WarnContext(ctx, "snapshot cache invalidation failed",
				"product_id", productID,
				"error", err.Error(),
			)
		}
	}

	s.logger.InfoContext(ctx, "batch save committed",
		"product_id", productID,
		"cells", len(records),
	)
	return len(records), nil
}
