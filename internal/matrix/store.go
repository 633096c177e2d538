// Package matrix holds the canonical in-memory entitlement matrix for the
// active product: which catalog items each commercial package unlocks.
package matrix

import (
	"sync"

	"entmatrix/internal/catalog"
)

// Key identifies one matrix cell within the active product.
type Key struct {
	ItemID    string
	PackageID string
}

// Cell is the state of one (item, package) pair. The zero value is the state
// of every absent key: not enabled, not dirty.
type Cell struct {
	Enabled bool
	Dirty   bool
}

// DirtyCell is one pending mutation captured by a save snapshot.
type DirtyCell struct {
	Key
	Enabled bool
}

// Store is the source of truth for cell state of the active product. It is the
// only component that mutates the matrix; everything else reads through it.
//
// The generation counter increments on every product switch and every full
// load. Asynchronous completions (toggle rollbacks, save reconciliation)
// capture the generation of the matrix they acted on and are discarded when it
// no longer matches, so late responses for a stale product never touch the
// current one.
type Store struct {
	mu         sync.RWMutex
	productID  string
	generation uint64
	cells      map[Key]Cell
}

// NewStore creates an empty store with no active product.
func NewStore() *Store {
	return &Store{cells: make(map[Key]Cell)}
}

// SetProduct makes productID the active product, discarding the previous
// product's matrix unconditionally. Any outstanding dirty state is dropped,
// not reconciled.
func (s *Store) SetProduct(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productID = productID
	s.generation++
	s.cells = make(map[Key]Cell)
}

// Product returns the active product ID, empty when none is selected.
func (s *Store) Product() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productID
}

// Load replaces the entire matrix with server-supplied rows. Every cell starts
// clean; previously tracked dirty cells are discarded without warning.
func (s *Store) Load(rows []catalog.MatrixRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cells = make(map[Key]Cell, len(rows))
	for _, row := range rows {
		// Last write wins on duplicate keys.
		s.cells[Key{ItemID: row.ItemID, PackageID: row.PackageID}] = Cell{Enabled: row.Enabled}
	}
}

// Get returns the cell state for a pair. Total: missing keys read as the zero
// cell, never an error.
func (s *Store) Get(itemID, packageID string) Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cells[Key{ItemID: itemID, PackageID: packageID}]
}

// Set overwrites a cell and returns the prior value plus the generation the
// write landed in, enabling rollback by the caller.
func (s *Store) Set(itemID, packageID string, enabled, dirty bool) (Cell, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key{ItemID: itemID, PackageID: packageID}
	prev := s.cells[key]
	s.cells[key] = Cell{Enabled: enabled, Dirty: dirty}
	return prev, s.generation
}

// SetIfGeneration overwrites a cell only when the matrix generation still
// matches gen. Returns false when the write was discarded as stale.
func (s *Store) SetIfGeneration(gen uint64, itemID, packageID string, enabled, dirty bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.cells[Key{ItemID: itemID, PackageID: packageID}] = Cell{Enabled: enabled, Dirty: dirty}
	return true
}

// DirtySnapshot returns a point-in-time copy of every dirty cell along with
// the generation it was taken at. Cells that become dirty afterwards are not
// part of the snapshot.
func (s *Store) DirtySnapshot() ([]DirtyCell, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var dirty []DirtyCell
	for key, cell := range s.cells {
		if cell.Dirty {
			dirty = append(dirty, DirtyCell{Key: key, Enabled: cell.Enabled})
		}
	}
	return dirty, s.generation
}

// ClearDirtyIf marks exactly the given keys clean, leaving enabled untouched,
// provided the matrix generation still matches gen. Keys toggled again since
// the snapshot keep their current enabled value; only the flag flips.
func (s *Store) ClearDirtyIf(gen uint64, keys []Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	for _, key := range keys {
		if cell, ok := s.cells[key]; ok {
			cell.Dirty = false
			s.cells[key] = cell
		}
	}
	return true
}

// HasDirty reports whether any cell has an unconfirmed local mutation.
func (s *Store) HasDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cell := range s.cells {
		if cell.Dirty {
			return true
		}
	}
	return false
}
