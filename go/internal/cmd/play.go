package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mcdev12/roulette/go/internal/connection"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:     "play",
	Short:   "Join the live table",
	GroupID: "game",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		services, err := setupServices(cfg)
		if err != nil {
			return err
		}
		g, err := setupGame(cfg, services)
		if err != nil {
			return err
		}
		defer g.Close()

		go func() {
			if err := g.Loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("game loop stopped")
			}
			cancel()
		}()

		identity, err := restore(ctx, services)
		if err != nil {
			log.Warn().Err(err).Msg("could not restore session")
		}
		if identity == nil {
			fmt.Println("Watching only. Run 'roulette login' to place bets.")
		}

		go func() {
			err := g.Manager.Run(ctx)
			if errors.Is(err, connection.ErrRetriesExhausted) {
				fmt.Fprintln(os.Stderr, "Could not reach the table, giving up")
			}
			cancel()
		}()

		fmt.Println("Type 'help' for commands.")
		go readCommands(ctx, cancel, os.Stdin, g, services)

		<-ctx.Done()
		fmt.Println("Leaving the table")
		return nil
	},
}

func readCommands(ctx context.Context, cancel context.CancelFunc, in io.Reader, g *Game, services *Services) {
	defer cancel()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		c, err := parseCommand(line)
		if errors.Is(err, errEmptyCommand) {
			continue
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if c.kind == cmdQuit {
			return
		}
		if err := runCommand(ctx, c, g, services); err != nil {
			fmt.Println(err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("failed to read commands")
	}
}

func runCommand(ctx context.Context, c command, g *Game, services *Services) error {
	switch c.kind {
	case cmdBet:
		// rejections are shown by the presenter
		if _, err := g.Loop.PlaceBet(ctx, c.betType, c.value); err != nil {
			log.Debug().Err(err).Str("bet_type", string(c.betType)).Str("value", c.value).Msg("bet not sent")
		}
	case cmdStake:
		if err := g.Loop.SetStake(ctx, c.amount); err != nil {
			return err
		}
		fmt.Printf("Stake: %.2f\n", c.amount)
	case cmdRefresh:
		return g.Loop.Refresh()
	case cmdHistory:
		snap, err := g.Loop.Snapshot(ctx)
		if err != nil {
			return err
		}
		if len(snap.History) == 0 {
			fmt.Println("No results yet")
			return nil
		}
		numbers := make([]string, len(snap.History))
		for i, h := range snap.History {
			numbers[i] = fmt.Sprintf("%d %s", h.Number, h.Color)
		}
		fmt.Println("History: " + strings.Join(numbers, ", "))
	case cmdStatus:
		snap, err := g.Loop.Snapshot(ctx)
		if err != nil {
			return err
		}
		conn := "connected"
		if !snap.Connected {
			conn = "reconnecting"
		}
		fmt.Printf("Round: %s | Stake: %.2f | Pending: %d | %s\n", snap.Phase, snap.Stake, len(snap.Pending), conn)
		if len(snap.ActiveBets) > 0 {
			fmt.Println("Active bets: " + strings.Join(snap.ActiveBets, ", "))
		}
		if identity, ok := services.Session.Identity(); ok {
			fmt.Printf("Player: %s | Balance: %.2f\n", identity.Username, identity.Balance)
		}
	case cmdLogout:
		return services.Session.Logout()
	case cmdHelp:
		fmt.Println(playHelp)
	}
	return nil
}
