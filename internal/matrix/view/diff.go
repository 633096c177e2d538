package view

import (
	"entmatrix/internal/catalog"
	"entmatrix/internal/matrix"
)

// OnlyDifferences keeps items whose enabled state is not uniform across the
// visible packages. Items with zero visible packages read as uniform and are
// dropped. Buckets emptied by the filter are removed entirely.
func OnlyDifferences(buckets []Bucket, packages []catalog.Package, store *matrix.Store) []Bucket {
	var out []Bucket
	for _, bucket := range buckets {
		var kept []catalog.Item
		for _, item := range bucket.Items {
			if differs(item, packages, store) {
				kept = append(kept, item)
			}
		}
		if len(kept) > 0 {
			out = append(out, Bucket{Key: bucket.Key, Items: kept})
		}
	}
	return out
}

// OnlyDifferencesGrouped applies OnlyDifferences inside every section,
// removing sections whose buckets all emptied.
func OnlyDifferencesGrouped(sections []Section, packages []catalog.Package, store *matrix.Store) []Section {
	var out []Section
	for _, section := range sections {
		buckets := OnlyDifferences(section.Buckets, packages, store)
		if len(buckets) > 0 {
			out = append(out, Section{Key: section.Key, Buckets: buckets})
		}
	}
	return out
}

func differs(item catalog.Item, packages []catalog.Package, store *matrix.Store) bool {
	if len(packages) == 0 {
		return false
	}
	first := store.Get(item.ID, packages[0].ID).Enabled
	for _, pkg := range packages[1:] {
		if store.Get(item.ID, pkg.ID).Enabled != first {
			return true
		}
	}
	return false
}
