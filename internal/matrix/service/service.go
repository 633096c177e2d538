// Package service orchestrates the entitlement matrix: loading product
// snapshots, optimistic single-cell toggles, and batched draft saves. It owns
// no state beyond the catalog of the active product; cell state lives in the
// matrix store it is handed.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"entmatrix/internal/audit"
	"entmatrix/internal/catalog"
	"entmatrix/internal/matrix"
	"entmatrix/internal/platform/metrics"
	domainerrors "entmatrix/pkg/domain-errors"
	"entmatrix/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Snapshots fetches full product state from the catalog service.
type Snapshots interface {
	FetchSnapshot(ctx context.Context, productID string) (*catalog.Snapshot, error)
}

// Persistence stores cell changes in the catalog service.
type Persistence interface {
	PersistCell(ctx context.Context, rec catalog.ChangeRecord) error
	PersistBatch(ctx context.Context, recs []catalog.ChangeRecord) error
}

// SnapshotCache caches product snapshots. Optional; the service works without
// one.
type SnapshotCache interface {
	Get(ctx context.Context, productID string) (*catalog.Snapshot, error)
	Save(ctx context.Context, productID string, snap *catalog.Snapshot) error
	Invalidate(ctx context.Context, productID string) error
}

// Service is the single entry point the transport layer talks to.
type Service struct {
	store       *matrix.Store
	validator   *matrix.Validator
	snapshots   Snapshots
	persistence Persistence
	cache       SnapshotCache
	auditor     *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      trace.Tracer

	// saveInFlight guards Save against overlapping batch submissions from
	// concurrent requests.
	saveInFlight atomic.Bool

	// catalogMu guards the active product's item and package lists, which are
	// replaced wholesale on product switch.
	catalogMu sync.RWMutex
	items     map[string]catalog.Item
	itemList  []catalog.Item
	packages  []catalog.Package
}

// Option configures the Service.
type Option func(*Service)

// WithCache enables the snapshot cache.
func WithCache(cache SnapshotCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithAuditor enables audit trail emission.
func WithAuditor(auditor *audit.Publisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

// New wires the service. store must be the sole matrix store of the process.
func New(
	store *matrix.Store,
	snapshots Snapshots,
	persistence Persistence,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:       store,
		validator:   matrix.NewValidator(store),
		snapshots:   snapshots,
		persistence: persistence,
		metrics:     m,
		logger:      logger,
		tracer:      otel.Tracer("entmatrix/matrix"),
		items:       make(map[string]catalog.Item),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetProduct makes productID the active product and loads its snapshot. The
// previous product's matrix, including any unsaved dirty cells, is discarded
// unconditionally. When the snapshot cannot be fetched the previous product
// stays active and untouched.
func (s *Service) SetProduct(ctx context.Context, productID string) error {
	ctx, span := s.tracer.Start(ctx, "matrix.set_product")
	defer span.End()

	if productID == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "product id must not be empty")
	}

	snap, err := s.fetchSnapshot(ctx, productID)
	if err != nil {
		span.RecordError(err)
		return domainerrors.Wrap(domainerrors.CodeUnavailable,
			fmt.Sprintf("load snapshot for product %s", productID), err)
	}

	s.store.SetProduct(productID)
	s.store.Load(snap.Rows)

	s.catalogMu.Lock()
	s.itemList = snap.Items
	s.items = make(map[string]catalog.Item, len(snap.Items))
	for _, item := range snap.Items {
		s.items[item.ID] = item
	}
	s.packages = snap.Packages
	s.catalogMu.Unlock()

	s.metrics.SnapshotLoads.Inc()
	s.emit(audit.Event{
		Action:    audit.ActionProductSwap,
		ProductID: productID,
		CellCount: len(snap.Rows),
	})

	s.logger.InfoContext(ctx, "product snapshot loaded",
		"product_id", productID,
		"items", len(snap.Items),
		"packages", len(snap.Packages),
		"rows", len(snap.Rows),
	)
	return nil
}

// fetchSnapshot reads through the cache when one is configured. Cache
// failures degrade to a catalog fetch, never to an error.
func (s *Service) fetchSnapshot(ctx context.Context, productID string) (*catalog.Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, productID)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "snapshot cache read failed",
				"product_id", productID,
				"error", err.Error(),
			)
		}
	}

	snap, err := s.snapshots.FetchSnapshot(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, productID, snap); err != nil {
			s.logger.WarnContext(ctx, "snapshot cache write failed",
				"product_id", productID,
				"error", err.Error(),
			)
		}
	}
	return snap, nil
}

// ActiveProduct returns the currently selected product ID, empty when none.
func (s *Service) ActiveProduct() string {
	return s.store.Product()
}

// HasDirty reports whether any cell holds an unconfirmed local mutation.
func (s *Service) HasDirty() bool {
	return s.store.HasDirty()
}

// Cell returns the state of one cell.
func (s *Service) Cell(itemID, packageID string) matrix.Cell {
	return s.store.Get(itemID, packageID)
}

// item resolves a catalog item of the active product.
func (s *Service) item(itemID string) (catalog.Item, bool) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	item, ok := s.items[itemID]
	return item, ok
}

func (s *Service) emit(event audit.Event) {
	if s.auditor != nil {
		s.auditor.Emit(event)
	}
}
