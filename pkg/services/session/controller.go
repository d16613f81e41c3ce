package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ledgerline/ledgerline/pkg/adapters"
	"github.com/ledgerline/ledgerline/pkg/models/domain"
	"github.com/ledgerline/ledgerline/pkg/models/store"
)

type State string

const (
	StateInitializing State = "initializing"
	StateNeedsSetup   State = "needs_setup"
	StateLoggedOut    State = "logged_out"
	StateLoggedIn     State = "logged_in"
)

// AdvisorySignedOut is surfaced when an authenticated session had to be
// discarded because its profile could not be resolved. It is distinct from
// the plain logged-out state so the client can explain the forced sign-out.
const AdvisorySignedOut = "Your session was closed because your user profile could not be loaded. Please sign in again."

const fallbackDisplayName = "New User"

// ProfileStore is the remote profile backend the controller reconciles
// against.
type ProfileStore interface {
	Probe(ctx context.Context) error
	Get(ctx context.Context, id string) (*store.ProfileRow, error)
	Insert(ctx context.Context, row store.ProfileRow) (*store.ProfileRow, error)
}

// AuthProvider is the remote authentication collaborator.
type AuthProvider interface {
	CurrentSession(ctx context.Context) (*domain.Session, error)
	SignOut(ctx context.Context) error
	// Subscribe registers fn for session-change events and returns a release
	// func. Events fire with the new session, or nil on sign-out.
	Subscribe(fn func(*domain.Session)) func()
}

// Snapshot is one atomically published controller state. Identity is non-nil
// exactly when State is StateLoggedIn.
type Snapshot struct {
	State    State
	Identity *domain.Profile
	Advisory string
}

// Controller reconciles authentication state with the remote profile store.
// Run executes the startup sequence strictly in order: schema probe, session
// fetch, identity resolution, and only then the change subscription, so a
// late event can never race the initial resolution.
type Controller struct {
	profiles ProfileStore
	auth     AuthProvider

	mu       sync.Mutex
	state    State
	identity *domain.Profile
	advisory string

	unsubscribe func()
	closed      bool
}

func NewController(profiles ProfileStore, auth AuthProvider) *Controller {
	return &Controller{
		profiles: profiles,
		auth:     auth,
		state:    StateInitializing,
	}
}

// Run performs the one-shot bootstrap and installs the session-change
// subscription. It never returns an error: every remote failure maps to a
// state, not a crash.
func (c *Controller) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx)

	if err := c.profiles.Probe(ctx); err != nil {
		if errors.Is(err, store.ErrSchemaMissing) {
			logger.Warn().Msg("profile schema missing, backend needs setup")
			c.publish(StateNeedsSetup, nil, "")
			return
		}
		// A provisioned but unreachable backend is not the setup case.
		logger.Error().Err(err).Msg("schema probe failed")
	}

	sess, err := c.auth.CurrentSession(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("session fetch failed")
		sess = nil
	}

	c.reconcile(ctx, sess)

	// Installed only after the initial resolution has been published.
	c.mu.Lock()
	if !c.closed {
		c.unsubscribe = c.auth.Subscribe(func(s *domain.Session) {
			c.reconcile(ctx, s)
		})
	}
	c.mu.Unlock()
}

// Close releases the session-change subscription. State updates after Close
// are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.closed = true
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Identity: c.identity, Advisory: c.advisory}
}

// reconcile maps a session (or its absence) to a state transition. The probe
// is never re-run here.
func (c *Controller) reconcile(ctx context.Context, sess *domain.Session) {
	logger := zerolog.Ctx(ctx)

	if sess == nil {
		c.publish(StateLoggedOut, nil, "")
		return
	}

	identity, err := c.ResolveIdentity(ctx, sess.UserID, sess.Email)
	if err != nil {
		logger.Error().Err(err).Str("user_id", sess.UserID).Msg("identity resolution failed, signing out")
		if err := c.auth.SignOut(ctx); err != nil {
			logger.Error().Err(err).Msg("sign out failed")
		}
		c.publish(StateLoggedOut, nil, AdvisorySignedOut)
		return
	}

	c.publish(StateLoggedIn, identity, "")
}

// ResolveIdentity reads the profile for subjectID, inserting a least
// privilege staff profile when none exists. The repair path never grants
// admin; the first-user-becomes-admin policy lives in the backend signup
// trigger only.
func (c *Controller) ResolveIdentity(ctx context.Context, subjectID, subjectEmail string) (*domain.Profile, error) {
	row, err := c.profiles.Get(ctx, subjectID)
	if err == nil {
		return adapters.MapStoreProfileToDomain(row), nil
	}
	if !errors.Is(err, store.ErrProfileNotFound) {
		return nil, err
	}

	inserted, err := c.profiles.Insert(ctx, store.ProfileRow{
		ID:          subjectID,
		Email:       subjectEmail,
		DisplayName: displayNameFromEmail(subjectEmail),
		Role:        string(domain.RoleStaff),
	})
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreProfileToDomain(inserted), nil
}

func (c *Controller) publish(state State, identity *domain.Profile, advisory string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = state
	c.identity = identity
	c.advisory = advisory
}

func displayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return fallbackDisplayName
}
