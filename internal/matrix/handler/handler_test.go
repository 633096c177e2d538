package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"entmatrix/internal/catalog"
	"entmatrix/internal/matrix"
	matrixservice "entmatrix/internal/matrix/service"
	"entmatrix/internal/matrix/service/mocks"
	"entmatrix/internal/platform/metrics"
	"entmatrix/pkg/platform/sentinel"
	"entmatrix/pkg/testutil"
)

type fixture struct {
	router      http.Handler
	store       *matrix.Store
	snapshots   *mocks.MockSnapshots
	persistence *mocks.MockPersistence
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		store:       matrix.NewStore(),
		snapshots:   mocks.NewMockSnapshots(ctrl),
		persistence: mocks.NewMockPersistence(ctrl),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := matrixservice.New(f.store, f.snapshots, f.persistence,
		metrics.New(prometheus.NewRegistry()), logger)

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	f.router = r
	return f
}

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Packages: []catalog.Package{
			{ID: "pkg-1", Name: "Basic", Status: catalog.PackageActive},
			{ID: "pkg-2", Name: "Legacy", Status: catalog.PackageInactive},
		},
		Items: []catalog.Item{
			{ID: "feat-a", Name: "Invoice Export", Kind: catalog.KindFeature, Module: "Billing"},
			{ID: "menu-m", Name: "Orders", Kind: catalog.KindMenu, Module: "Sales", ModuleGroup: "Commerce"},
		},
		Rows: []catalog.MatrixRow{
			{ItemID: "feat-a", PackageID: "pkg-1", Enabled: true, ItemKind: catalog.KindFeature},
		},
	}
}

func (f *fixture) loadProduct(t *testing.T, productID string) {
	t.Helper()
	f.snapshots.EXPECT().
		FetchSnapshot(gomock.Any(), productID).
		Return(testSnapshot(), nil)

	req := testutil.NewRequest(t, http.MethodPut, "/products/"+productID)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestHandleSetProduct(t *testing.T) {
	t.Run("activates the product", func(t *testing.T) {
		f := newFixture(t)
		f.snapshots.EXPECT().
			FetchSnapshot(gomock.Any(), "prod-1").
			Return(testSnapshot(), nil)

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodPut, "/products/prod-1"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[SetProductResponse](t, rr)
		assert.Equal(t, "prod-1", resp.ProductID)
	})

	t.Run("catalog outage is a bad gateway", func(t *testing.T) {
		f := newFixture(t)
		f.snapshots.EXPECT().
			FetchSnapshot(gomock.Any(), "prod-1").
			Return(nil, sentinel.ErrUnavailable)

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodPut, "/products/prod-1"))
		testutil.AssertStatus(t, rr, http.StatusBadGateway)
		testutil.AssertErrorCode(t, rr, "unavailable")
	})
}

func TestHandleViewRequiresActiveProduct(t *testing.T) {
	f := newFixture(t)
	f.loadProduct(t, "prod-1")

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/products/prod-9/matrix"))
	testutil.AssertStatus(t, rr, http.StatusConflict)
	testutil.AssertErrorCode(t, rr, "conflict")
}

func TestHandleView(t *testing.T) {
	t.Run("renders the feature matrix by default", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/products/prod-1/matrix"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[matrixservice.MatrixView](t, rr)
		assert.Equal(t, "prod-1", resp.ProductID)
		require.Len(t, resp.Buckets, 1)
		assert.Equal(t, "Billing", resp.Buckets[0].Key)
		assert.Empty(t, resp.Sections)
	})

	t.Run("renders menus as sections", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/products/prod-1/matrix?kind=menu"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[matrixservice.MatrixView](t, rr)
		require.Len(t, resp.Sections, 1)
		assert.Equal(t, "Commerce", resp.Sections[0].Key)
	})

	t.Run("rejects an unknown kind", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/products/prod-1/matrix?kind=widget"))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "bad_request")
	})

	t.Run("rejects an unknown package selector", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/products/prod-1/matrix?packages=some"))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestHandleToggle(t *testing.T) {
	t.Run("returns the optimistic cell", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")

		persisted := make(chan struct{})
		f.persistence.EXPECT().
			PersistCell(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, catalog.ChangeRecord) error {
				close(persisted)
				return nil
			})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/products/prod-1/cells/toggle",
			ToggleRequest{ItemID: "feat-a", PackageID: "pkg-2"})
		rr := testutil.DoRequest(f.router, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[CellResponse](t, rr)
		assert.Equal(t, &CellResponse{ItemID: "feat-a", PackageID: "pkg-2", Enabled: true, Dirty: true}, resp)

		<-persisted
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")

		req := testutil.NewRequest(t, http.MethodPost, "/products/prod-1/cells/toggle")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("rejects missing ids", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/products/prod-1/cells/toggle",
			ToggleRequest{ItemID: "feat-a"})
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/products/prod-1/cells/toggle",
			ToggleRequest{ItemID: "ghost", PackageID: "pkg-1"})
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		testutil.AssertErrorCode(t, rr, "not_found")
	})
}

func TestHandleSave(t *testing.T) {
	t.Run("reports the number of saved cells", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")
		f.store.Set("feat-a", "pkg-2", true, true)

		f.persistence.EXPECT().
			PersistBatch(gomock.Any(), gomock.Any()).
			Return(nil)

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodPost, "/products/prod-1/save"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[SaveResponse](t, rr)
		assert.Equal(t, 1, resp.Saved)
	})

	t.Run("persistence failure is a bad gateway", func(t *testing.T) {
		f := newFixture(t)
		f.loadProduct(t, "prod-1")
		f.store.Set("feat-a", "pkg-2", true, true)

		f.persistence.EXPECT().
			PersistBatch(gomock.Any(), gomock.Any()).
			Return(sentinel.ErrUnavailable)

		rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodPost, "/products/prod-1/save"))
		testutil.AssertStatus(t, rr, http.StatusBadGateway)
		testutil.AssertErrorCode(t, rr, "unavailable")
	})
}

func TestHandleDirty(t *testing.T) {
	f := newFixture(t)
	f.loadProduct(t, "prod-1")

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/products/prod-1/dirty"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.False(t, testutil.UnmarshalResponse[DirtyResponse](t, rr).Dirty)

	f.store.Set("feat-a", "pkg-2", true, true)

	rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/products/prod-1/dirty"))
	assert.True(t, testutil.UnmarshalResponse[DirtyResponse](t, rr).Dirty)
}
