// Package view organizes the flat catalog item list into the hierarchies the
// matrix screen renders, and narrows them with search, package-status, and
// difference filters. Everything here is a pure function over read-only input.
package view

import "entmatrix/internal/catalog"

// DefaultBucket is the grouping label applied when an item carries none.
const DefaultBucket = "General"

// Bucket is an ordered list of items sharing one grouping key.
type Bucket struct {
	Key   string
	Items []catalog.Item
}

// Section is a second-level grouping: a module group holding module buckets.
type Section struct {
	Key     string
	Buckets []Bucket
}

// GroupFeatures groups feature items by module. Features carry no module
// group, so the result is a single flat level.
func GroupFeatures(items []catalog.Item) []Bucket {
	return group(items, moduleKey)
}

// GroupMenus groups menu items by module group, then by module within each
// group. Menus carry the extra navigational level that features do not model.
func GroupMenus(items []catalog.Item) []Section {
	outer := group(items, moduleGroupKey)
	sections := make([]Section, 0, len(outer))
	for _, bucket := range outer {
		sections = append(sections, Section{
			Key:     bucket.Key,
			Buckets: group(bucket.Items, moduleKey),
		})
	}
	return sections
}

// group partitions items into buckets keyed by keyFn. Every item lands in
// exactly one bucket. Item order within a bucket preserves input order; bucket
// order is first-seen order.
func group(items []catalog.Item, keyFn func(catalog.Item) string) []Bucket {
	index := make(map[string]int, len(items))
	var buckets []Bucket
	for _, item := range items {
		key := keyFn(item)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Items = append(buckets[i].Items, item)
	}
	return buckets
}

func moduleKey(item catalog.Item) string {
	if item.Module == "" {
		return DefaultBucket
	}
	return item.Module
}

func moduleGroupKey(item catalog.Item) string {
	if item.ModuleGroup == "" {
		return DefaultBucket
	}
	return item.ModuleGroup
}
