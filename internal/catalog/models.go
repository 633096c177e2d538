package catalog

// ItemKind distinguishes feature items from navigation menu items. Menus carry
// an extra grouping level and a navigation path; features may declare
// dependencies on other features.
type ItemKind string

const (
	KindFeature ItemKind = "feature"
	KindMenu    ItemKind = "menu"
)

// PackageStatus is the commercial lifecycle state of a package.
type PackageStatus string

const (
	PackageActive   PackageStatus = "active"
	PackageInactive PackageStatus = "inactive"
)

// Item is a catalog entry owned by the external catalog service. Read-only to
// this service.
type Item struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Kind         ItemKind `json:"kind"`
	Module       string   `json:"module"`
	ModuleGroup  string   `json:"module_group,omitempty"`
	NavPath      string   `json:"nav_path,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Package is a commercial package owned by the external catalog service.
type Package struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Status PackageStatus `json:"status"`
}

// MatrixRow is one entitlement cell as delivered by the snapshot endpoint.
type MatrixRow struct {
	ItemID    string   `json:"item_id"`
	PackageID string   `json:"package_id"`
	Enabled   bool     `json:"enabled"`
	ItemKind  ItemKind `json:"item_type"`
}

// Snapshot is the full per-product state delivered by the catalog service.
type Snapshot struct {
	Packages []Package   `json:"packages"`
	Items    []Item      `json:"items"`
	Rows     []MatrixRow `json:"rows"`
}

// ChangeRecord is the wire representation of one pending cell mutation.
type ChangeRecord struct {
	ItemKind  ItemKind `json:"item_type"`
	ItemID    string   `json:"item_id"`
	PackageID string   `json:"package_id"`
	Enabled   bool     `json:"enabled"`
}
