package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/models/api"
)

func respond(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, msg, code string) {
	respond(ctx, w, status, api.Error{Error: msg, Code: code})
}
