package presentation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mcdev12/roulette/go/internal/events"
	"github.com/mcdev12/roulette/go/internal/protocol"
	"golang.org/x/term"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
)

// ShouldUseColor honours NO_COLOR, CLICOLOR_FORCE and CLICOLOR before
// falling back to whether f is a terminal.
func ShouldUseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Console prints one line per interesting event.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	// EveryTick prints every countdown value instead of milestones only.
	EveryTick bool

	lastPhase events.Phase
}

func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

func (c *Console) Present(ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := c.format(ev)
	if line == "" {
		return
	}
	fmt.Fprintln(c.out, line)
}

func (c *Console) format(ev events.Event) string {
	switch e := ev.(type) {
	case events.PhaseChanged:
		return c.formatPhase(e)
	case events.ResultShown:
		return fmt.Sprintf("Result: %s", c.number(e.Number, e.Color))
	case events.HistoryReplaced:
		parts := make([]string, 0, len(e.History))
		for _, h := range e.History {
			parts = append(parts, c.number(h.Number, h.Color))
		}
		return c.paint(ansiDim, "History: ") + strings.Join(parts, " ")
	case events.BalanceChanged:
		return fmt.Sprintf("Balance: %.2f", e.Balance)
	case events.ActiveBetsChanged:
		if len(e.Bets) == 0 {
			return c.paint(ansiDim, "Active bets cleared")
		}
		return "Active bets: " + strings.Join(e.Bets, ", ")
	case events.BetMessage:
		if e.Text == "" {
			return ""
		}
		return c.paint(ansiYellow, e.Text)
	case events.RoundOutcome:
		if e.Won {
			return c.paint(ansiGreen+ansiBold, fmt.Sprintf("WIN! +%.2f | Result: %d", e.Payout, e.Number))
		}
		return c.paint(ansiRed, fmt.Sprintf("No win | Result: %d", e.Number))
	case events.ServerError:
		return c.paint(ansiRed, "Server: "+e.Message)
	case events.ServerClock:
		return ""
	case events.SessionChanged:
		if e.LoggedIn && e.Identity != nil {
			return fmt.Sprintf("Logged in as %s (balance %.2f)", e.Identity.Username, e.Identity.Balance)
		}
		if e.LoggedIn {
			return ""
		}
		return c.paint(ansiYellow, "Logged out: "+e.Reason)
	case events.ConnectionChanged:
		if e.Connected {
			return c.paint(ansiDim, fmt.Sprintf("Connected (#%d)", e.Generation))
		}
		return c.paint(ansiYellow, "Connection lost, reconnecting...")
	case events.BetPending:
		return c.paint(ansiDim, fmt.Sprintf("Sent: %.2f on %s %s", e.Amount, e.Type, e.Value))
	case events.BetRejected:
		return c.paint(ansiRed, "Bet rejected: "+e.Reason)
	default:
		return ""
	}
}

func (c *Console) formatPhase(e events.PhaseChanged) string {
	changed := e.Phase != c.lastPhase
	c.lastPhase = e.Phase

	switch e.Phase {
	case events.PhaseBetting:
		if changed || c.EveryTick || e.SecondsRemaining%5 == 0 || e.SecondsRemaining <= 3 {
			return c.paint(ansiGreen, fmt.Sprintf("Betting open: %ds", e.SecondsRemaining))
		}
		return ""
	case events.PhaseLocked:
		return c.paint(ansiRed, "Betting closed")
	case events.PhaseRolling:
		return c.paint(ansiYellow, "Rolling...")
	default:
		// resolved is printed from ResultShown
		return ""
	}
}

func (c *Console) number(n int, color protocol.Color) string {
	switch color {
	case protocol.ColorRed:
		return c.paint(ansiRed, fmt.Sprint(n))
	case protocol.ColorGreen:
		return c.paint(ansiGreen, fmt.Sprint(n))
	default:
		return c.paint(ansiBold, fmt.Sprint(n))
	}
}

func (c *Console) paint(code, s string) string {
	if !c.color {
		return s
	}
	return code + s + ansiReset
}
