package registry

import (
	"context"

	"github.com/ledgerline/ledgerline/pkg/models/domain"
)

// Registry resolves named backend profiles from the local credentials file
// (~/.ledgerline/credentials by default).
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetBackend(ctx context.Context, profile string) (*domain.Backend, error)
}
