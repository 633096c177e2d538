package view

import (
	"strings"

	"entmatrix/internal/catalog"
)

// PackageSelector is the three-way package status filter. It applies
// independently of item search and of the difference filter.
type PackageSelector string

const (
	PackagesAll      PackageSelector = "all"
	PackagesActive   PackageSelector = "active"
	PackagesInactive PackageSelector = "inactive"
)

// FilterItems keeps items matching query with a case-insensitive substring
// test against name, module, module group, and navigation path. It is not
// fuzzy and does not look at dependency ids. An empty query keeps everything.
func FilterItems(items []catalog.Item, query string) []catalog.Item {
	if query == "" {
		return items
	}
	needle := strings.ToLower(query)
	var out []catalog.Item
	for _, item := range items {
		if matches(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item catalog.Item, needle string) bool {
	for _, field := range []string{item.Name, item.Module, item.ModuleGroup, item.NavPath} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// FilterPackages narrows packages by status.
func FilterPackages(packages []catalog.Package, selector PackageSelector) []catalog.Package {
	if selector == "" || selector == PackagesAll {
		return packages
	}
	want := catalog.PackageActive
	if selector == PackagesInactive {
		want = catalog.PackageInactive
	}
	var out []catalog.Package
	for _, pkg := range packages {
		if pkg.Status == want {
			out = append(out, pkg)
		}
	}
	return out
}
