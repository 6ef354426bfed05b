package casino_api_client

import (
	"context"
	"fmt"

	"github.com/mcdev12/roulette/go/clients"
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/protocol"
)

type FundOperation struct {
	UserID    int64   `json:"user_id"`
	Amount    float64 `json:"amount"`
	Operation string  `json:"operation"`
}

type FundsResponse struct {
	Message    string  `json:"message"`
	NewBalance float64 `json:"new_balance"`
	Username   string  `json:"username"`
}

type SpinRecord struct {
	ID        int64          `json:"id"`
	Number    int            `json:"number"`
	Color     protocol.Color `json:"color"`
	Timestamp string         `json:"timestamp"`
}

type SpinHistoryResponse struct {
	TotalSpins int                    `json:"total_spins"`
	Statistics map[protocol.Color]int `json:"statistics"`
	History    []SpinRecord           `json:"history"`
}

func (c *CasinoApiClient) ListUsers(ctx context.Context, token string) ([]models.Identity, error) {
	var users []models.Identity
	if err := c.Get(ctx, UsersEndpoint, &users, clients.WithBearer(token)); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (c *CasinoApiClient) ManageFunds(ctx context.Context, token string, op FundOperation) (*FundsResponse, error) {
	switch op.Operation {
	case FundsAdd, FundsRemove, FundsSet:
	default:
		return nil, fmt.Errorf("unknown fund operation %q", op.Operation)
	}

	var response FundsResponse
	if err := c.Post(ctx, FundsEndpoint, op, &response, clients.WithBearer(token)); err != nil {
		return nil, fmt.Errorf("failed to manage funds: %w", err)
	}
	return &response, nil
}

func (c *CasinoApiClient) SpinHistory(ctx context.Context, token string, limit int) (*SpinHistoryResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	endpoint := fmt.Sprintf("%s?limit=%d", SpinHistoryEndpoint, limit)

	var response SpinHistoryResponse
	if err := c.Get(ctx, endpoint, &response, clients.WithBearer(token)); err != nil {
		return nil, fmt.Errorf("failed to get spin history: %w", err)
	}
	return &response, nil
}
