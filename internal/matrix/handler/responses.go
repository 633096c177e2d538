package handler

// SetProductResponse confirms the newly active product.
type SetProductResponse struct {
	ProductID string `json:"product_id"`
}

// CellResponse is the optimistic cell state returned by a toggle.
type CellResponse struct {
	ItemID    string `json:"item_id"`
	PackageID string `json:"package_id"`
	Enabled   bool   `json:"enabled"`
	Dirty     bool   `json:"dirty"`
}

// SaveResponse reports how many cells a batch save submitted.
type SaveResponse struct {
	Saved int `json:"saved"`
}

// DirtyResponse is the draft indicator.
type DirtyResponse struct {
	Dirty bool `json:"dirty"`
}
