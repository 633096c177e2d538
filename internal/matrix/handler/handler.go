// Package handler is the thin HTTP layer over the matrix service. It
// delegates to the service without embedding matrix logic so transport
// concerns stay isolated.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"entmatrix/internal/catalog"
	matrixservice "entmatrix/internal/matrix/service"
	"entmatrix/internal/matrix/view"
	"entmatrix/internal/platform/middleware"
	domainerrors "entmatrix/pkg/domain-errors"
	"entmatrix/pkg/platform/httputil"
)

// Handler handles the matrix endpoints.
type Handler struct {
	service *matrixservice.Service
	logger  *slog.Logger
}

// New creates a matrix Handler.
func New(service *matrixservice.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the matrix routes with the shared middleware stack.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	router.Put("/products/{productID}", h.handleSetProduct)
	router.Get("/products/{productID}/matrix", h.handleView)
	router.Post("/products/{productID}/cells/toggle", h.handleToggle)
	router.Post("/products/{productID}/save", h.handleSave)
	router.Get("/products/{productID}/dirty", h.handleDirty)

	r.Mount("/", router)
}

func (h *Handler) handleSetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "productID")

	if err := h.service.SetProduct(ctx, productID); err != nil {
		h.logger.WarnContext(ctx, "product switch failed",
			"product_id", productID,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SetProductResponse{ProductID: productID})
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.requireActive(r); err != nil {
		httputil.WriteError(w, err)
		return
	}

	opts, err := viewOptionsFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.View(opts)
	if err != nil {
		h.logger.ErrorContext(ctx, "view assembly failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.requireActive(r); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.ItemID == "" || req.PackageID == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "item_id and package_id are required"))
		return
	}

	cell, done, err := h.service.Toggle(ctx, req.ItemID, req.PackageID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The response carries the optimistic state; the persistence outcome
	// arrives later and is already logged and rolled back by the service.
	// Draining keeps the channel from lingering.
	go func() { <-done }()

	httputil.WriteJSON(w, http.StatusOK, CellResponse{
		ItemID:    req.ItemID,
		PackageID: req.PackageID,
		Enabled:   cell.Enabled,
		Dirty:     cell.Dirty,
	})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.requireActive(r); err != nil {
		httputil.WriteError(w, err)
		return
	}

	saved, err := h.service.Save(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "batch save failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SaveResponse{Saved: saved})
}

func (h *Handler) handleDirty(w http.ResponseWriter, r *http.Request) {
	if err := h.requireActive(r); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DirtyResponse{Dirty: h.service.HasDirty()})
}

// requireActive rejects requests addressed to a product other than the active
// one; the UI that sent them is stale.
func (h *Handler) requireActive(r *http.Request) error {
	productID := chi.URLParam(r, "productID")
	if active := h.service.ActiveProduct(); active != productID {
		return domainerrors.New(domainerrors.CodeConflict, "product "+productID+" is not the active product")
	}
	return nil
}

func viewOptionsFromQuery(r *http.Request) (matrixservice.ViewOptions, error) {
	q := r.URL.Query()

	kind := catalog.ItemKind(q.Get("kind"))
	switch kind {
	case "":
		kind = catalog.KindFeature
	case catalog.KindFeature, catalog.KindMenu:
	default:
		return matrixservice.ViewOptions{}, domainerrors.New(domainerrors.CodeBadRequest, "kind must be feature or menu")
	}

	selector := view.PackageSelector(q.Get("packages"))
	switch selector {
	case "", view.PackagesAll, view.PackagesActive, view.PackagesInactive:
	default:
		return matrixservice.ViewOptions{}, domainerrors.New(domainerrors.CodeBadRequest, "packages must be all, active, or inactive")
	}

	return matrixservice.ViewOptions{
		Kind:      kind,
		Query:     q.Get("q"),
		Packages:  selector,
		OnlyDiffs: q.Get("diff") == "true",
	}, nil
}
