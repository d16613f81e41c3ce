package adapters

import (
	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/models/store"
)

func MapStoreProfileToDomain(row *store.ProfileRow) *domain.Profile {
	if row == nil {
		return nil
	}

	return &domain.Profile{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		Role:        domain.Role(row.Role),
		CreatedAt:   row.CreatedAt,
	}
}

func MapDomainProfileToStore(p *domain.Profile) *store.ProfileRow {
	return &store.ProfileRow{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        string(p.Role),
		CreatedAt:   p.CreatedAt,
	}
}
