package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/mcdev12/roulette/go/clients"
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Store owns the current identity and its bearer token. It is the only place
// the identity is mutated; everyone else reads it through Identity.
type Store struct {
	api   AuthAPI
	creds CredentialStore

	mu        sync.RWMutex
	token     string
	identity  *models.Identity
	listeners []Listener
}

// NewStore creates a logged-out Store. Call RestoreSession to pick up a
// previously persisted token.
func NewStore(api AuthAPI, creds CredentialStore) *Store {
	return &Store{
		api:   api,
		creds: creds,
	}
}

// Subscribe registers l for session changes. Listeners run on the goroutine
// that caused the change and must not call back into the Store.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Login exchanges credentials for a token, persists it and enters the
// authenticated state.
func (s *Store) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	if err := s.creds.Save(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	identity := resp.User
	s.mu.Lock()
	s.token = resp.AccessToken
	s.identity = &identity
	s.mu.Unlock()

	log.Info().Str("username", identity.Username).Int64("user_id", identity.ID).Msg("logged in")
	s.notify(Change{LoggedIn: true, Identity: s.snapshot(), Reason: ReasonLogin})
	return s.snapshot(), nil
}

// Register creates an account. It does not log in.
func (s *Store) Register(ctx context.Context, username, password string) error {
	if err := s.api.Register(ctx, username, password); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("registered")
	return nil
}

// RestoreSession rehydrates the identity from a persisted token. It returns
// (nil, nil) when no token is stored. Any failure purges the token.
func (s *Store) RestoreSession(ctx context.Context) (*models.Identity, error) {
	token, err := s.creds.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	identity, err := s.api.Me(ctx, token)
	if err != nil {
		if clearErr := s.creds.Clear(); clearErr != nil {
			log.Warn().Err(clearErr).Msg("failed to purge stale credentials")
		}
		log.Info().Err(err).Msg("stored session rejected")
		if clients.IsStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.identity = identity
	s.mu.Unlock()

	s.notify(Change{LoggedIn: true, Identity: s.snapshot(), Reason: ReasonRestored})
	return s.snapshot(), nil
}

// RefreshIdentity re-fetches the identity with the stored token. A 401 logs
// the user out; concurrent refreshes failing with the same token log out once.
func (s *Store) RefreshIdentity(ctx context.Context) (*models.Identity, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	identity, err := s.api.Me(ctx, token)
	if err != nil {
		if clients.IsStatus(err, http.StatusUnauthorized) {
			s.endSession(token, ReasonExpired)
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("failed to refresh identity: %w", err)
	}

	s.mu.Lock()
	if s.token != token {
		// logged out or replaced while the request was in flight
		s.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	s.identity = identity
	s.mu.Unlock()

	log.Debug().Float64("balance", identity.Balance).Msg("identity refreshed")
	s.notify(Change{LoggedIn: true, Identity: s.snapshot(), Reason: ReasonRefreshed})
	return s.snapshot(), nil
}

// Logout clears the identity and the persisted token. Calling it while
// logged out is a no-op.
func (s *Store) Logout() error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return s.creds.Clear()
	}
	s.endSession(token, ReasonLogout)
	return nil
}

// endSession logs out only if token is still the active one, so a session is
// ended at most once no matter how many callers race here.
func (s *Store) endSession(token, reason string) bool {
	s.mu.Lock()
	if s.token == "" || s.token != token {
		s.mu.Unlock()
		return false
	}
	s.token = ""
	s.identity = nil
	s.mu.Unlock()

	if err := s.creds.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear credentials")
	}
	log.Info().Str("reason", reason).Msg("logged out")
	s.notify(Change{LoggedIn: false, Reason: reason})
	return true
}

// Apply overwrites the cached balance. It reports false when nobody is
// logged in.
func (s *Store) Apply(update BalanceUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return false
	}
	s.identity.Balance = update.Balance
	return true
}

// Identity returns a copy of the current identity.
func (s *Store) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// Token returns the bearer token of the current session, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) snapshot() *models.Identity {
	identity, ok := s.Identity()
	if !ok {
		return nil
	}
	return &identity
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(change)
	}
}
