package service

import (
	"entmatrix/internal/catalog"
	"entmatrix/internal/matrix/view"
	domainerrors "entmatrix/pkg/domain-errors"
)

// ViewOptions narrow the rendered matrix. Search and the package selector
// apply before grouping; the difference filter applies after.
type ViewOptions struct {
	Kind      catalog.ItemKind
	Query     string
	Packages  view.PackageSelector
	OnlyDiffs bool
}

// CellView is one rendered cell.
type CellView struct {
	PackageID string `json:"package_id"`
	Enabled   bool   `json:"enabled"`
	Dirty     bool   `json:"dirty"`
}

// RowView is one rendered item row with its cells across visible packages.
type RowView struct {
	Item      catalog.Item `json:"item"`
	Satisfied bool         `json:"satisfied"`
	Cells     []CellView   `json:"cells"`
}

// BucketView is an ordered module bucket of rows.
type BucketView struct {
	Key  string    `json:"key"`
	Rows []RowView `json:"rows"`
}

// SectionView is a module group holding module buckets (menu view only).
type SectionView struct {
	Key     string       `json:"key"`
	Buckets []BucketView `json:"buckets"`
}

// MatrixView is the full rendered matrix for one kind of item.
type MatrixView struct {
	ProductID string            `json:"product_id"`
	Packages  []catalog.Package `json:"packages"`
	Buckets   []BucketView      `json:"buckets,omitempty"`
	Sections  []SectionView     `json:"sections,omitempty"`
	Dirty     bool              `json:"dirty"`
}

// View assembles the grouped, filtered matrix for the active product.
func (s *Service) View(opts ViewOptions) (*MatrixView, error) {
	productID := s.store.Product()
	if productID == "" {
		return nil, domainerrors.New(domainerrors.CodeConflict, "no active product")
	}

	s.catalogMu.RLock()
	items := make([]catalog.Item, 0, len(s.itemList))
	for _, item := range s.itemList {
		if item.Kind == opts.Kind {
			items = append(items, item)
		}
	}
	allPackages := s.packages
	s.catalogMu.RUnlock()

	items = view.FilterItems(items, opts.Query)
	visible := view.FilterPackages(allPackages, opts.Packages)

	result := &MatrixView{
		ProductID: productID,
		Packages:  visible,
		Dirty:     s.store.HasDirty(),
	}

	switch opts.Kind {
	case catalog.KindMenu:
		sections := view.GroupMenus(items)
		if opts.OnlyDiffs {
			sections = view.OnlyDifferencesGrouped(sections, visible, s.store)
		}
		result.Sections = s.renderSections(sections, visible, allPackages)
	default:
		buckets := view.GroupFeatures(items)
		if opts.OnlyDiffs {
			buckets = view.OnlyDifferences(buckets, visible, s.store)
		}
		result.Buckets = s.renderBuckets(buckets, visible, allPackages)
	}
	return result, nil
}

func (s *Service) renderSections(sections []view.Section, visible, all []catalog.Package) []SectionView {
	out := make([]SectionView, 0, len(sections))
	for _, section := range sections {
		out = append(out, SectionView{
			Key:     section.Key,
			Buckets: s.renderBuckets(section.Buckets, visible, all),
		})
	}
	return out
}

func (s *Service) renderBuckets(buckets []view.Bucket, visible, all []catalog.Package) []BucketView {
	out := make([]BucketView, 0, len(buckets))
	for _, bucket := range buckets {
		rows := make([]RowView, 0, len(bucket.Items))
		for _, item := range bucket.Items {
			cells := make([]CellView, 0, len(visible))
			for _, pkg := range visible {
				cell := s.store.Get(item.ID, pkg.ID)
				cells = append(cells, CellView{
					PackageID: pkg.ID,
					Enabled:   cell.Enabled,
					Dirty:     cell.Dirty,
				})
			}
			rows = append(rows, RowView{
				Item: item,
				// Dependency satisfaction looks across every package, not
				// just the visible columns.
				Satisfied: s.validator.Satisfied(item, all),
				Cells:     cells,
			})
		}
		out = append(out, BucketView{Key: bucket.Key, Rows: rows})
	}
	return out
}
