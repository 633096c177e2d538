package matrix

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"entmatrix/internal/catalog"
)

type StoreSuite struct {
	suite.Suite
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.store = NewStore()
	s.store.SetProduct("prod-1")
}

func (s *StoreSuite) TestLoadReplacesMatrix() {
	s.store.Load([]catalog.MatrixRow{
		{ItemID: "feat-a", PackageID: "pkg-1", Enabled: true},
		{ItemID: "feat-b", PackageID: "pkg-1", Enabled: false},
	})

	s.Run("loaded pairs read back server values", func() {
		s.Equal(Cell{Enabled: true}, s.store.Get("feat-a", "pkg-1"))
		s.Equal(Cell{Enabled: false}, s.store.Get("feat-b", "pkg-1"))
	})

	s.Run("absent pairs read as the zero cell", func() {
		s.Equal(Cell{}, s.store.Get("feat-a", "pkg-2"))
		s.Equal(Cell{}, s.store.Get("nope", "pkg-1"))
	})

	s.Run("reload discards dirty state", func() {
		s.store.Set("feat-a", "pkg-1", false, true)
		s.Require().True(s.store.HasDirty())

		s.store.Load([]catalog.MatrixRow{
			{ItemID: "feat-a", PackageID: "pkg-1", Enabled: true},
		})
		s.False(s.store.HasDirty())
		s.Equal(Cell{Enabled: true}, s.store.Get("feat-a", "pkg-1"))
	})

	s.Run("duplicate keys last write wins", func() {
		s.store.Load([]catalog.MatrixRow{
			{ItemID: "feat-a", PackageID: "pkg-1", Enabled: false},
			{ItemID: "feat-a", PackageID: "pkg-1", Enabled: true},
		})
		s.True(s.store.Get("feat-a", "pkg-1").Enabled)
	})
}

func (s *StoreSuite) TestSetReturnsPrevious() {
	prev, _ := s.store.Set("feat-a", "pkg-1", true, true)
	s.Equal(Cell{}, prev)

	prev, _ = s.store.Set("feat-a", "pkg-1", false, true)
	s.Equal(Cell{Enabled: true, Dirty: true}, prev)
}

func (s *StoreSuite) TestSetProductDiscardsEverything() {
	s.store.Set("feat-a", "pkg-1", true, true)

	s.store.SetProduct("prod-2")

	s.Equal("prod-2", s.store.Product())
	s.Equal(Cell{}, s.store.Get("feat-a", "pkg-1"))
	s.False(s.store.HasDirty())
}

func (s *StoreSuite) TestSetIfGenerationDiscardsStaleWrites() {
	prev, gen := s.store.Set("feat-a", "pkg-1", true, true)
	s.Require().Equal(Cell{}, prev)

	s.Run("current generation applies", func() {
		s.True(s.store.SetIfGeneration(gen, "feat-a", "pkg-1", false, false))
		s.Equal(Cell{}, s.store.Get("feat-a", "pkg-1"))
	})

	s.Run("stale generation is discarded", func() {
		_, gen := s.store.Set("feat-a", "pkg-1", true, true)
		s.store.SetProduct("prod-2")

		s.False(s.store.SetIfGeneration(gen, "feat-a", "pkg-1", false, false))
		s.Equal(Cell{}, s.store.Get("feat-a", "pkg-1"))
	})
}

func (s *StoreSuite) TestDirtySnapshotAndClear() {
	s.store.Set("feat-a", "pkg-1", true, true)
	s.store.Set("feat-b", "pkg-1", false, true)
	s.store.Set("feat-c", "pkg-1", true, false)

	dirty, gen := s.store.DirtySnapshot()
	s.Len(dirty, 2)

	// A cell dirtied after the snapshot is untouched by the clear.
	s.store.Set("feat-c", "pkg-1", false, true)

	keys := make([]Key, 0, len(dirty))
	for _, cell := range dirty {
		keys = append(keys, cell.Key)
	}
	s.Require().True(s.store.ClearDirtyIf(gen, keys))

	s.Equal(Cell{Enabled: true, Dirty: false}, s.store.Get("feat-a", "pkg-1"))
	s.Equal(Cell{Enabled: false, Dirty: false}, s.store.Get("feat-b", "pkg-1"))
	s.Equal(Cell{Enabled: false, Dirty: true}, s.store.Get("feat-c", "pkg-1"))
	s.True(s.store.HasDirty())
}

func (s *StoreSuite) TestClearDirtyIfStaleGeneration() {
	s.store.Set("feat-a", "pkg-1", true, true)
	dirty, gen := s.store.DirtySnapshot()
	s.Require().Len(dirty, 1)

	s.store.SetProduct("prod-2")
	s.store.Set("feat-a", "pkg-1", true, true)

	s.False(s.store.ClearDirtyIf(gen, []Key{dirty[0].Key}))
	s.True(s.store.Get("feat-a", "pkg-1").Dirty)
}

func (s *StoreSuite) TestLoadBumpsGeneration() {
	_, gen := s.store.Set("feat-a", "pkg-1", true, true)
	s.store.Load(nil)
	s.False(s.store.SetIfGeneration(gen, "feat-a", "pkg-1", false, false))
}
