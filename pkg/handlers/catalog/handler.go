package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/adapters"
	"github.com/ledgerline/ledgerline/pkg/models/api"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/catalog"
)

type Handler struct {
	products catalog.Store
}

func NewHandler(products catalog.Store) *Handler {
	return &Handler{products: products}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.List(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list products")
		respondError(ctx, w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := make([]api.Product, 0, len(products))
	for _, p := range products {
		response = append(response, adapters.MapDomainProductToApi(p))
	}
	respond(ctx, w, http.StatusOK, response)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body api.Product
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "product name is required")
		return
	}

	product, err := adapters.MapApiProductToDomain(body)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	product.ID = uuid.NewString()
	product.CreatedAt = time.Now()

	if err := h.products.Add(ctx, product); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to add product")
		respondError(ctx, w, http.StatusInternalServerError, "failed to add product")
		return
	}
	respond(ctx, w, http.StatusCreated, adapters.MapDomainProductToApi(product))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var body api.Product
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := adapters.MapApiProductToDomain(body)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	product.ID = id

	if err := h.products.Update(ctx, product); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "product not found")
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Str("id", id).Msg("failed to update product")
		respondError(ctx, w, http.StatusInternalServerError, "failed to update product")
		return
	}
	respond(ctx, w, http.StatusOK, adapters.MapDomainProductToApi(product))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.products.Delete(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "product not found")
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Str("id", id).Msg("failed to delete product")
		respondError(ctx, w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respond(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	respond(ctx, w, status, api.Error{Error: msg})
}
