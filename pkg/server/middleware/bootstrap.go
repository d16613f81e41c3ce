package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ledgerline/ledgerline/pkg/models/api"
	"github.com/ledgerline/ledgerline/pkg/services/session"
)

// BootstrapGate rejects API traffic while the bootstrap controller has not
// reached a serving state. NeedsSetup is a distinct condition the client
// routes to the one-time setup flow.
func BootstrapGate(ctrl *session.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			switch ctrl.Snapshot().State {
			case session.StateNeedsSetup:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(api.Error{Error: "backend not provisioned", Code: "setup_required"})
			case session.StateInitializing:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(api.Error{Error: "starting up", Code: "initializing"})
			default:
				next.ServeHTTP(w, req)
			}
		})
	}
}
