package handler

// ToggleRequest identifies the cell to flip.
type ToggleRequest struct {
	ItemID    string `json:"item_id"`
	PackageID string `json:"package_id"`
}
