package main

import (
	"fmt"
	"os"

	"github.com/mcdev12/roulette/go/clients/casino_api_client"
	"github.com/mcdev12/roulette/go/internal/bet"
	"github.com/mcdev12/roulette/go/internal/config"
	"github.com/mcdev12/roulette/go/internal/connection"
	"github.com/mcdev12/roulette/go/internal/game"
	"github.com/mcdev12/roulette/go/internal/presentation"
	"github.com/mcdev12/roulette/go/internal/round"
	"github.com/mcdev12/roulette/go/internal/session"
	"github.com/rs/zerolog/log"
)

type Services struct {
	API     *casino_api_client.CasinoApiClient
	Session *session.Store
}

func setupServices(c *config.Config) (*Services, error) {
	api := casino_api_client.NewCasinoApiClient(c.Server.BaseURL)
	api.SetTimeout(c.Server.RequestTimeout)

	path := c.Credentials.Path
	if path == "" {
		p, err := session.DefaultCredentialPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve credential path: %w", err)
		}
		path = p
	}

	return &Services{
		API:     api,
		Session: session.NewStore(api, session.NewFileCredentialStore(path)),
	}, nil
}

// Game is everything the play command runs.
type Game struct {
	Loop    *game.Loop
	Manager *connection.Manager
	closers []func() error
}

func (g *Game) Close() {
	for _, closeFn := range g.closers {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("failed to close")
		}
	}
}

// senderFunc adapts a function to bet.Sender.
type senderFunc func(v any) error

func (f senderFunc) Send(v any) error { return f(v) }

func setupGame(c *config.Config, services *Services) (*Game, error) {
	// Wire up the game chain
	// Session store → Round machine + Bet submitter → Game loop ← Connection manager
	g := &Game{}

	presenter, closers, err := setupPresenters(c)
	if err != nil {
		return nil, err
	}
	g.closers = closers

	ledger := bet.NewLedger()
	machine := round.NewMachine(c.RoundConfig(), services.Session, ledger)

	var manager *connection.Manager
	submitter := bet.NewSubmitter(services.Session, senderFunc(func(v any) error { return manager.Send(v) }), ledger,
		bet.WithRoundCounter(machine),
		bet.WithStake(c.Betting.DefaultStake),
		bet.WithCorrelationIDs(c.Betting.CorrelationIDs),
	)
	loop := game.NewLoop(machine, submitter, ledger, services.Session, presenter)
	services.Session.Subscribe(loop.HandleSessionChange)

	connConfig, err := c.ConnectionConfig()
	if err != nil {
		g.Close()
		return nil, err
	}
	manager = connection.NewManager(connConfig, loop, connection.WithRetryPolicy(c.RetryPolicy()))

	g.Loop = loop
	g.Manager = manager
	return g, nil
}

func setupPresenters(c *config.Config) (presentation.Presenter, []func() error, error) {
	presenters := presentation.Fanout{
		presentation.NewConsole(os.Stdout, presentation.ShouldUseColor(os.Stdout)),
	}
	var closers []func() error

	if c.Events.NATSURL != "" {
		natsConfig := presentation.DefaultNATSConfig()
		natsConfig.URL = c.Events.NATSURL
		natsConfig.SubjectPrefix = c.Events.SubjectPrefix

		publisher, err := presentation.NewNATSPublisher(natsConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect event publisher: %w", err)
		}
		presenters = append(presenters, publisher)
		closers = append(closers, publisher.Close)
		log.Info().Str("url", c.Events.NATSURL).Str("prefix", c.Events.SubjectPrefix).Msg("mirroring events to NATS")
	}

	return presenters, closers, nil
}
