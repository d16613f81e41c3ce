package registry

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
)

type credRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &credRegistry{cfg: cfg}, nil
}

func (cr *credRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *credRegistry) GetBackend(_ context.Context, profile string) (*domain.Backend, error) {
	section := cr.cfg.Section(profile)
	if section == nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	backend := &domain.Backend{
		PostgresDSN: section.Key("postgres_dsn").String(),
		AuthURL:     section.Key("auth_url").String(),
		AuthAPIKey:  section.Key("auth_api_key").String(),
		AssetBucket: section.Key("asset_bucket").String(),
		AssetRegion: section.Key("asset_region").String(),
	}
	if backend.PostgresDSN == "" {
		return nil, fmt.Errorf("profile %s: postgres_dsn is required", profile)
	}
	if backend.AuthURL == "" {
		return nil, fmt.Errorf("profile %s: auth_url is required", profile)
	}
	return backend, nil
}
