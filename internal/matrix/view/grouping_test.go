package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entmatrix/internal/catalog"
)

func feature(id, module string) catalog.Item {
	return catalog.Item{ID: id, Name: id, Kind: catalog.KindFeature, Module: module}
}

func menu(id, group, module string) catalog.Item {
	return catalog.Item{ID: id, Name: id, Kind: catalog.KindMenu, ModuleGroup: group, Module: module}
}

func TestGroupFeatures(t *testing.T) {
	items := []catalog.Item{
		feature("f1", "Billing"),
		feature("f2", "Inventory"),
		feature("f3", "Billing"),
		feature("f4", ""),
	}

	buckets := GroupFeatures(items)

	require.Len(t, buckets, 3)
	assert.Equal(t, "Billing", buckets[0].Key)
	assert.Equal(t, "Inventory", buckets[1].Key)
	assert.Equal(t, DefaultBucket, buckets[2].Key)

	// Input order is preserved within a bucket.
	assert.Equal(t, []catalog.Item{items[0], items[2]}, buckets[0].Items)
	assert.Equal(t, []catalog.Item{items[1]}, buckets[1].Items)
	assert.Equal(t, []catalog.Item{items[3]}, buckets[2].Items)
}

func TestGroupFeaturesPartitionsInput(t *testing.T) {
	items := []catalog.Item{
		feature("f1", "A"), feature("f2", "B"), feature("f3", "A"),
		feature("f4", ""), feature("f5", "C"), feature("f6", "B"),
	}

	buckets := GroupFeatures(items)

	seen := make(map[string]int)
	for _, bucket := range buckets {
		for _, item := range bucket.Items {
			seen[item.ID]++
		}
	}
	require.Len(t, seen, len(items), "every item appears")
	for id, count := range seen {
		assert.Equal(t, 1, count, "item %s appears exactly once", id)
	}
}

func TestGroupMenus(t *testing.T) {
	items := []catalog.Item{
		menu("m1", "Sales", "Orders"),
		menu("m2", "Sales", "Quotes"),
		menu("m3", "Admin", "Users"),
		menu("m4", "Sales", "Orders"),
		menu("m5", "", ""),
	}

	sections := GroupMenus(items)

	require.Len(t, sections, 3)
	assert.Equal(t, "Sales", sections[0].Key)
	assert.Equal(t, "Admin", sections[1].Key)
	assert.Equal(t, DefaultBucket, sections[2].Key)

	require.Len(t, sections[0].Buckets, 2)
	assert.Equal(t, "Orders", sections[0].Buckets[0].Key)
	assert.Equal(t, []catalog.Item{items[0], items[3]}, sections[0].Buckets[0].Items)
	assert.Equal(t, "Quotes", sections[0].Buckets[1].Key)

	// Partition: every menu lands in exactly one (group, module) bucket.
	seen := make(map[string]int)
	for _, section := range sections {
		for _, bucket := range section.Buckets {
			for _, item := range bucket.Items {
				seen[item.ID]++
			}
		}
	}
	require.Len(t, seen, len(items))
	for id, count := range seen {
		assert.Equal(t, 1, count, "item %s appears exactly once", id)
	}
}

func TestGroupEmptyInput(t *testing.T) {
	assert.Empty(t, GroupFeatures(nil))
	assert.Empty(t, GroupMenus(nil))
}
