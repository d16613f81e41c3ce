package directory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/adapters"
	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/store/postgres"
)

// UnknownUser is displayed for invoices whose author is no longer present in
// the user list. CreatedByID is a weak reference, never ownership.
const UnknownUser = "Unknown user"

// Service maintains the in-memory user list. Refresh failures are logged and
// leave the previous list intact, so a flaky backend never blanks out names
// that were already resolved.
type Service struct {
	profiles postgres.Store

	mu   sync.RWMutex
	byID map[string]domain.Profile
}

func NewService(profiles postgres.Store) *Service {
	return &Service{
		profiles: profiles,
		byID:     map[string]domain.Profile{},
	}
}

func (s *Service) Refresh(ctx context.Context) {
	rows, err := s.profiles.List(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("user list refresh failed, keeping previous list")
		return
	}

	next := make(map[string]domain.Profile, len(rows))
	for i := range rows {
		p := adapters.MapStoreProfileToDomain(&rows[i])
		next[p.ID] = *p
	}

	s.mu.Lock()
	s.byID = next
	s.mu.Unlock()
}

// Visible returns the profiles the viewer may see: admins the whole list,
// staff only themselves.
func (s *Service) Visible(ctx context.Context, viewer *domain.Profile) []domain.Profile {
	if viewer == nil {
		return nil
	}
	if !viewer.IsAdmin() {
		return []domain.Profile{*viewer}
	}

	s.Refresh(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Profile, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p)
	}
	return out
}

// DisplayName resolves an author id to a display name, falling back to the
// sentinel when the id is absent from the current list.
func (s *Service) DisplayName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[id]; ok && p.DisplayName != "" {
		return p.DisplayName
	}
	return UnknownUser
}
