package session

import (
	"context"
	"errors"

	"github.com/mcdev12/roulette/go/clients/casino_api_client"
	"github.com/mcdev12/roulette/go/internal/models"
)

var (
	// ErrAuthFailed is returned when the auth service rejects a login.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrUnauthorized is returned when a stored token is no longer accepted.
	ErrUnauthorized = errors.New("session is no longer authorized")
	// ErrNotLoggedIn is returned by operations that need a token.
	ErrNotLoggedIn = errors.New("not logged in")
)

// AuthAPI is what the store needs from the auth service.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*casino_api_client.LoginResponse, error)
	Register(ctx context.Context, username, password string) error
	Me(ctx context.Context, token string) (*models.Identity, error)
}

// BalanceUpdate overwrites the cached balance with an authoritative value.
type BalanceUpdate struct {
	Balance float64
}

// Change describes a transition between logged in and logged out.
type Change struct {
	LoggedIn bool
	Identity *models.Identity
	Reason   string
}

// Listener is notified after every login, logout and identity refresh.
type Listener func(Change)

// Logout reasons.
const (
	ReasonLogin     = "login"
	ReasonRestored  = "restored"
	ReasonRefreshed = "refreshed"
	ReasonLogout    = "logout"
	ReasonExpired   = "session expired"
)
