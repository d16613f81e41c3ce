package settings

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/models/api"
	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/services/settings"
)

// maxLogoSize caps logo uploads at 2 MiB.
const maxLogoSize = 2 << 20

type Handler struct {
	settings *settings.Service
}

func NewHandler(svc *settings.Service) *Handler {
	return &Handler{settings: svc}
}

func (h *Handler) GetBranding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	branding, err := h.settings.Branding(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load branding")
		respondError(ctx, w, http.StatusInternalServerError, "failed to load branding")
		return
	}
	respond(ctx, w, http.StatusOK, branding)
}

func (h *Handler) PutBranding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var branding domain.Branding
	if err := json.NewDecoder(r.Body).Decode(&branding); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings.SaveBranding(ctx, branding); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to save branding")
		respondError(ctx, w, http.StatusInternalServerError, "failed to save branding")
		return
	}
	respond(ctx, w, http.StatusOK, branding)
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tmpl, err := h.settings.Template(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load template")
		respondError(ctx, w, http.StatusInternalServerError, "failed to load template")
		return
	}
	respond(ctx, w, http.StatusOK, tmpl)
}

func (h *Handler) PutTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var tmpl domain.Template
	if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settings.SaveTemplate(ctx, tmpl); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to save template")
		respondError(ctx, w, http.StatusInternalServerError, "failed to save template")
		return
	}
	respond(ctx, w, http.StatusOK, tmpl)
}

// UploadLogo accepts a multipart form with a "logo" file field, pushes the
// image to the asset bucket and returns the public URL.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "logo file is required")
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxLogoSize+1))
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "failed to read logo file")
		return
	}
	if len(body) > maxLogoSize {
		respondError(ctx, w, http.StatusRequestEntityTooLarge, "logo exceeds the size limit")
		return
	}

	name := "logo" + filepath.Ext(header.Filename)
	url, err := h.settings.UploadLogo(ctx, name, body)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to upload logo")
		respondError(ctx, w, http.StatusInternalServerError, "failed to upload logo")
		return
	}
	respond(ctx, w, http.StatusOK, map[string]string{"logoUrl": url})
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
