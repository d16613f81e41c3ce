package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	authhandler "github.com/ledgerline/ledgerline/pkg/handlers/auth"
	cataloghandler "github.com/ledgerline/ledgerline/pkg/handlers/catalog"
	invoicehandler "github.com/ledgerline/ledgerline/pkg/handlers/invoice"
	settingshandler "github.com/ledgerline/ledgerline/pkg/handlers/settings"
	ledgermiddleware "github.com/ledgerline/ledgerline/pkg/server/middleware"
	"github.com/ledgerline/ledgerline/pkg/services/directory"
	"github.com/ledgerline/ledgerline/pkg/services/invoicing"
	"github.com/ledgerline/ledgerline/pkg/services/session"
	settingssvc "github.com/ledgerline/ledgerline/pkg/services/settings"
	"github.com/ledgerline/ledgerline/pkg/store/authgw"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/catalog"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Session   *session.Controller
	Auth      *authgw.Client
	Invoicing *invoicing.Service
	Catalog   catalog.Store
	Settings  *settingssvc.Service
	Directory *directory.Service
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := ConfigureRouter(&logger, config)

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

// ConfigureRouter mounts the full API surface. Everything under /api/v1
// except the auth routes sits behind the bootstrap gate so clients get a
// setup_required answer instead of schema errors while the backend is
// unprovisioned.
func ConfigureRouter(logger *zerolog.Logger, config Config) *chi.Mux {
	router := chi.NewRouter()
	deps := config.Dependencies

	authH := authhandler.NewHandler(deps.Auth, deps.Session, deps.Directory)
	invoiceH := invoicehandler.NewHandler(deps.Invoicing, deps.Directory, deps.Session)
	catalogH := cataloghandler.NewHandler(deps.Catalog)
	settingsH := settingshandler.NewHandler(deps.Settings)

	router.Use(chimiddleware.RequestID)
	router.Use(ledgermiddleware.Logger(logger))
	router.Use(chimiddleware.Recoverer)

	if len(config.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		// Auth stays reachable in every bootstrap state: /auth/me is how the
		// client learns the state in the first place.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-in", authH.SignIn)
			r.Post("/sign-out", authH.SignOut)
			r.Post("/sign-up", authH.SignUp)
			r.Post("/resend-confirmation", authH.ResendConfirmation)
			r.Get("/me", authH.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(ledgermiddleware.BootstrapGate(deps.Session))

			r.Get("/users", authH.ListUsers)

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", invoiceH.List)
				r.Post("/", invoiceH.Create)
				r.Get("/{id}", invoiceH.Get)
				r.Put("/{id}", invoiceH.Update)
				r.Delete("/{id}", invoiceH.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/daily", invoiceH.DailyReport)
				r.Get("/monthly", invoiceH.MonthlyReport)
				r.Get("/customers", invoiceH.CustomerReport)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", catalogH.List)
				r.Post("/", catalogH.Create)
				r.Put("/{id}", catalogH.Update)
				r.Delete("/{id}", catalogH.Delete)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/branding", settingsH.GetBranding)
				r.Put("/branding", settingsH.PutBranding)
				r.Get("/template", settingsH.GetTemplate)
				r.Put("/template", settingsH.PutTemplate)
				r.Post("/logo", settingsH.UploadLogo)
			})
		})
	})

	return router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
