package main

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ledgerline/ledgerline/pkg/server"
	"github.com/ledgerline/ledgerline/pkg/services/config"
	"github.com/ledgerline/ledgerline/pkg/services/directory"
	"github.com/ledgerline/ledgerline/pkg/services/invoicing"
	"github.com/ledgerline/ledgerline/pkg/services/registry"
	"github.com/ledgerline/ledgerline/pkg/services/session"
	settingssvc "github.com/ledgerline/ledgerline/pkg/services/settings"
	"github.com/ledgerline/ledgerline/pkg/store/authgw"
	"github.com/ledgerline/ledgerline/pkg/store/blob"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/catalog"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/document"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/invoice"
	"github.com/ledgerline/ledgerline/pkg/store/postgres"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the Ledgerline API server",
		RunE:  runServer,
	}

	usr, _ := user.Current()
	defaultPath := fmt.Sprintf("%s/.ledgerline/config.yaml", usr.HomeDir)

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", defaultPath,
		"Path to the config file (default is $HOME/.ledgerline/config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := registry.NewRegistry(cfg.CredentialsPath)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	backend, err := creds.GetBackend(ctx, cfg.Profile)
	if err != nil {
		return fmt.Errorf("failed to resolve backend profile: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DBPath})
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	defer db.Close()

	invoices, err := invoice.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create invoice store: %w", err)
	}
	products, err := catalog.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create product store: %w", err)
	}
	docs, err := document.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create document store: %w", err)
	}

	pg, err := postgres.Open(backend.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to open remote backend: %w", err)
	}
	defer pg.Close()
	profiles, err := postgres.NewStore(pg)
	if err != nil {
		return fmt.Errorf("failed to create profile store: %w", err)
	}

	auth, err := authgw.NewClient(authgw.Config{
		BaseURL: backend.AuthURL,
		APIKey:  backend.AuthAPIKey,
	}, docs)
	if err != nil {
		return fmt.Errorf("failed to create auth client: %w", err)
	}

	var assets blob.Store
	if backend.AssetBucket != "" {
		assets, err = blob.NewStore(ctx, blob.Settings{
			Bucket: backend.AssetBucket,
			Region: backend.AssetRegion,
		})
		if err != nil {
			return fmt.Errorf("failed to create asset store: %w", err)
		}
	}

	ctrl := session.NewController(profiles, auth)
	ctrl.Run(ctx)
	defer ctrl.Close()

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     cfg.CORSOrigins,
		Dependencies: server.Dependencies{
			Session:   ctrl,
			Auth:      auth,
			Invoicing: invoicing.NewService(invoices, docs),
			Catalog:   products,
			Settings:  settingssvc.NewService(docs, assets),
			Directory: directory.NewService(profiles),
		},
	})

	return api.Start()
}
