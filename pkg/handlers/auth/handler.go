package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/adapters"
	"github.com/ledgerline/ledgerline/pkg/models/api"
	"github.com/ledgerline/ledgerline/pkg/services/directory"
	"github.com/ledgerline/ledgerline/pkg/services/session"
	"github.com/ledgerline/ledgerline/pkg/store/authgw"
)

type Handler struct {
	auth     *authgw.Client
	sessions *session.Controller
	users    *directory.Service
}

func NewHandler(auth *authgw.Client, sessions *session.Controller, users *directory.Service) *Handler {
	return &Handler{auth: auth, sessions: sessions, users: users}
}

// SignIn exchanges credentials for a session. Identity resolution runs on the
// session-change event before SignIn returns, so the response carries the
// already-reconciled state.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if _, err := h.auth.SignIn(ctx, creds.Email, creds.Password); err != nil {
		switch {
		case errors.Is(err, authgw.ErrEmailNotConfirmed):
			respondError(ctx, w, http.StatusUnauthorized, err.Error(), "email_not_confirmed")
		case errors.Is(err, authgw.ErrInvalidCredentials):
			respondError(ctx, w, http.StatusUnauthorized, err.Error(), "invalid_credentials")
		default:
			zerolog.Ctx(ctx).Error().Err(err).Msg("sign in failed")
			respondError(ctx, w, http.StatusBadGateway, "authentication backend unavailable", "")
		}
		return
	}

	respond(ctx, w, http.StatusOK, meFromSnapshot(h.sessions.Snapshot()))
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.SignOut(ctx); err != nil {
		// Local state is already cleared; the remote revocation failure is
		// logged but does not block the client.
		zerolog.Ctx(ctx).Warn().Err(err).Msg("remote sign out failed")
	}
	respond(ctx, w, http.StatusOK, meFromSnapshot(h.sessions.Snapshot()))
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if err := h.auth.SignUp(ctx, creds.Email, creds.Password); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("sign up failed")
		respondError(ctx, w, http.StatusBadGateway, "sign up failed", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	if err := h.auth.ResendConfirmation(ctx, body.Email); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("resend confirmation failed")
		respondError(ctx, w, http.StatusBadGateway, "resend confirmation failed", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respond(r.Context(), w, http.StatusOK, meFromSnapshot(h.sessions.Snapshot()))
}

// ListUsers returns the profiles visible to the current actor: all of them
// for admins, only their own for staff.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap := h.sessions.Snapshot()
	if snap.State != session.StateLoggedIn {
		respondError(ctx, w, http.StatusUnauthorized, "not signed in", "")
		return
	}

	visible := h.users.Visible(ctx, snap.Identity)
	response := make([]api.User, 0, len(visible))
	for _, p := range visible {
		response = append(response, adapters.MapDomainProfileToApi(p))
	}
	respond(ctx, w, http.StatusOK, response)
}

func meFromSnapshot(snap session.Snapshot) api.Me {
	me := api.Me{State: string(snap.State), Advisory: snap.Advisory}
	if snap.Identity != nil {
		user := adapters.MapDomainProfileToApi(*snap.Identity)
		me.User = &user
	}
	return me
}
