package casino_api_client

import (
	"context"
	"fmt"

	"github.com/mcdev12/roulette/go/clients"
	"github.com/mcdev12/roulette/go/internal/models"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        models.Identity `json:"user"`
}

func (c *CasinoApiClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var response LoginResponse
	if err := c.Post(ctx, LoginEndpoint, Credentials{Username: username, Password: password}, &response); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if response.AccessToken == "" {
		return nil, fmt.Errorf("failed to login: response carried no access token")
	}
	return &response, nil
}

// Register creates an account. The server also returns a token, but the
// client asks the user to log in explicitly afterwards.
func (c *CasinoApiClient) Register(ctx context.Context, username, password string) error {
	if err := c.Post(ctx, RegisterEndpoint, Credentials{Username: username, Password: password}, nil); err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	return nil
}

// Me fetches the identity the bearer token belongs to.
func (c *CasinoApiClient) Me(ctx context.Context, token string) (*models.Identity, error) {
	var identity models.Identity
	if err := c.Get(ctx, MeEndpoint, &identity, clients.WithBearer(token)); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &identity, nil
}
