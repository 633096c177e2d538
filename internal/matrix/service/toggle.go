package service

import (
	"context"
	"fmt"
	"time"

	"entmatrix/internal/audit"
	"entmatrix/internal/catalog"
	"entmatrix/internal/matrix"
	domainerrors "entmatrix/pkg/domain-errors"
)

// Toggle flips one cell optimistically. The returned cell is the new state,
// observable before any network confirmation. Persistence resolves on the
// returned channel: nil on success, the persistence error after a rollback on
// failure. The dirty flag is intentionally not cleared by a successful toggle;
// only a subsequent Save finalizes the draft. No automatic retry.
//
// Toggles on the same key are not coalesced or serialized; if two race, the
// persistence response arriving last wins. The backend accepts any boolean
// flip for a valid pair, so the common case never conflicts.
func (s *Service) Toggle(ctx context.Context, itemID, packageID string) (matrix.Cell, <-chan error, error) {
	ctx, span := s.tracer.Start(ctx, "matrix.toggle")
	defer span.End()

	if s.store.Product() == "" {
		return matrix.Cell{}, nil, domainerrors.New(domainerrors.CodeConflict, "no active product")
	}
	item, ok := s.item(itemID)
	if !ok {
		return matrix.Cell{}, nil, domainerrors.New(domainerrors.CodeNotFound,
			fmt.Sprintf("unknown catalog item %s", itemID))
	}

	cur := s.store.Get(itemID, packageID)
	next := !cur.Enabled

	prev, gen := s.store.Set(itemID, packageID, next, true)
	s.metrics.TogglesTotal.Inc()
	s.emit(audit.Event{
		Action:    audit.ActionToggle,
		ProductID: s.store.Product(),
		ItemID:    itemID,
		PackageID: packageID,
		Enabled:   &next,
	})

	rec := catalog.ChangeRecord{
		ItemKind:  item.Kind,
		ItemID:    itemID,
		PackageID: packageID,
		Enabled:   next,
	}

	done := make(chan error, 1)
	// The request context dies with the HTTP response; the persistence call
	// outlives it.
	go s.persistToggle(context.WithoutCancel(ctx), gen, rec, prev, done)

	return matrix.Cell{Enabled: next, Dirty: true}, done, nil
}

func (s *Service) persistToggle(ctx context.Context, gen uint64, rec catalog.ChangeRecord, prev matrix.Cell, done chan<- error) {
	start := time.Now()
	err := s.persistence.PersistCell(ctx, rec)
	s.metrics.PersistDuration.Observe(time.Since(start).Seconds())

	if err == nil {
		done <- nil
		return
	}

	// Roll back to the pre-toggle value, clean. Discarded when the matrix was
	// reloaded or the product switched while the request was in flight.
	if s.store.SetIfGeneration(gen, rec.ItemID, rec.PackageID, prev.Enabled, false) {
		s.metrics.RollbacksTotal.Inc()
		s.emit(audit.Event{
			Action:    audit.ActionRollback,
			ProductID: s.store.Product(),
			ItemID:    rec.ItemID,
			PackageID: rec.PackageID,
			Enabled:   &prev.Enabled,
			Detail:    err.Error(),
		})
	}

	s.logger.WarnContext(ctx, "cell persistence failed, toggle rolled back",
		"item_id", rec.ItemID,
		"package_id", rec.PackageID,
		"error", err.Error(),
	)
	done <- domainerrors.Wrap(domainerrors.CodeUnavailable, "persist cell change", err)
}
