package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcdev12/roulette/go/internal/protocol"
)

type commandKind int

const (
	cmdBet commandKind = iota
	cmdStake
	cmdRefresh
	cmdHistory
	cmdStatus
	cmdLogout
	cmdHelp
	cmdQuit
)

// command is one parsed line typed during play.
type command struct {
	kind    commandKind
	betType protocol.BetType
	value   string
	amount  float64
}

var errEmptyCommand = errors.New("empty command")

const playHelp = `Commands:
  bet <number|color|parity|dozen> <value>   place a bet at the current stake
  17 | red | black | even | odd | 1st 12     shorthand bets
  stake <amount>                            change the stake
  refresh                                   reload balance from the server
  history                                   show recent results
  status                                    show round, stake and pending bets
  logout                                    end the session
  quit                                      leave the table`

func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, errEmptyCommand
	}

	switch fields[0] {
	case "bet", "b":
		if len(fields) < 3 {
			return command{}, errors.New("usage: bet <number|color|parity|dozen> <value>")
		}
		return command{kind: cmdBet, betType: protocol.BetType(fields[1]), value: strings.Join(fields[2:], " ")}, nil
	case "stake":
		if len(fields) != 2 {
			return command{}, errors.New("usage: stake <amount>")
		}
		amount, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return command{}, fmt.Errorf("invalid stake %q", fields[1])
		}
		return command{kind: cmdStake, amount: amount}, nil
	case "refresh":
		return command{kind: cmdRefresh}, nil
	case "history":
		return command{kind: cmdHistory}, nil
	case "status":
		return command{kind: cmdStatus}, nil
	case "logout":
		return command{kind: cmdLogout}, nil
	case "help", "?":
		return command{kind: cmdHelp}, nil
	case "quit", "exit", "q":
		return command{kind: cmdQuit}, nil
	}

	if betType, value, ok := shorthandBet(fields); ok {
		return command{kind: cmdBet, betType: betType, value: value}, nil
	}
	return command{}, fmt.Errorf("unknown command %q, type 'help'", fields[0])
}

func shorthandBet(fields []string) (protocol.BetType, string, bool) {
	switch fields[0] {
	case "red", "black", "green":
		return protocol.BetColor, fields[0], len(fields) == 1
	case "even", "odd":
		return protocol.BetParity, fields[0], len(fields) == 1
	case "1st", "2nd", "3rd":
		if len(fields) == 1 || (len(fields) == 2 && fields[1] == "12") {
			return protocol.BetDozen, fields[0] + " 12", true
		}
		return "", "", false
	}
	if _, err := strconv.Atoi(fields[0]); err == nil && len(fields) == 1 {
		return protocol.BetNumber, fields[0], true
	}
	return "", "", false
}
