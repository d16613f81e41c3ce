package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/store/blob"
	"github.com/ledgerline/ledgerline/pkg/store/duckdb/document"
)

const (
	brandingDocument = "branding"
	templateDocument = "template"
)

func defaultBranding() domain.Branding {
	return domain.Branding{CompanyName: "My Company", AccentColor: "#1f2937"}
}

func defaultTemplate() domain.Template {
	return domain.Template{Layout: "classic", NumberPrefix: "INV-", ShowLogo: true}
}

// Service stores branding and template documents locally and pushes logo
// uploads to the asset bucket.
type Service struct {
	docs   document.Store
	assets blob.Store
}

func NewService(docs document.Store, assets blob.Store) *Service {
	return &Service{docs: docs, assets: assets}
}

func (s *Service) Branding(ctx context.Context) (domain.Branding, error) {
	branding := defaultBranding()
	err := s.loadInto(ctx, brandingDocument, &branding)
	return branding, err
}

func (s *Service) SaveBranding(ctx context.Context, branding domain.Branding) error {
	return s.save(ctx, brandingDocument, branding)
}

func (s *Service) Template(ctx context.Context) (domain.Template, error) {
	tmpl := defaultTemplate()
	err := s.loadInto(ctx, templateDocument, &tmpl)
	return tmpl, err
}

func (s *Service) SaveTemplate(ctx context.Context, tmpl domain.Template) error {
	return s.save(ctx, templateDocument, tmpl)
}

// UploadLogo stores the image remotely and records its public URL in the
// branding document.
func (s *Service) UploadLogo(ctx context.Context, filename string, body []byte) (string, error) {
	if s.assets == nil {
		return "", fmt.Errorf("no asset store configured")
	}

	url, err := s.assets.Upload(ctx, filename, body, true)
	if err != nil {
		return "", fmt.Errorf("upload logo: %w", err)
	}

	branding, err := s.Branding(ctx)
	if err != nil {
		return "", err
	}
	branding.LogoURL = url
	if err := s.SaveBranding(ctx, branding); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Service) loadInto(ctx context.Context, name string, out interface{}) error {
	body, err := s.docs.Load(ctx, name, nil)
	if err != nil {
		return err
	}
	if body == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (s *Service) save(ctx context.Context, name string, value interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.docs.Save(ctx, name, body)
}
