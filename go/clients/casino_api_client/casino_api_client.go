package casino_api_client

import (
	"github.com/mcdev12/roulette/go/clients"
)

type CasinoApiClient struct {
	*clients.BaseClient
}

func NewCasinoApiClient(baseURL string) *CasinoApiClient {
	client := &CasinoApiClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader("Accept", "application/json")

	return client
}
