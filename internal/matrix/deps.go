package matrix

import "entmatrix/internal/catalog"

// Validator answers whether a feature's declared prerequisites are entitled
// anywhere. It is advisory only: the presentation layer uses it to annotate
// rows, and it never blocks a toggle or a save.
type Validator struct {
	store *Store
}

// NewValidator builds a validator reading from the given store.
func NewValidator(store *Store) *Validator {
	return &Validator{store: store}
}

// Satisfied reports whether every dependency of item is enabled in at least
// one of the given packages. Items without dependencies are always satisfied.
// Pure read; never mutates the matrix.
func (v *Validator) Satisfied(item catalog.Item, packages []catalog.Package) bool {
	for _, dep := range item.Dependencies {
		if !v.enabledAnywhere(dep, packages) {
			return false
		}
	}
	return true
}

func (v *Validator) enabledAnywhere(itemID string, packages []catalog.Package) bool {
	for _, pkg := range packages {
		if v.store.Get(itemID, pkg.ID).Enabled {
			return true
		}
	}
	return false
}
