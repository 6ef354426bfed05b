package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:     "login [username]",
	Short:   "Log in and remember the session",
	GroupID: "session",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := setupServices(cfg)
		if err != nil {
			return err
		}
		username, password, err := promptCredentials(args)
		if err != nil {
			return err
		}

		identity, err := services.Session.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (balance %.2f)\n", identity.Username, identity.Balance)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:     "register [username]",
	Short:   "Create an account",
	GroupID: "session",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := setupServices(cfg)
		if err != nil {
			return err
		}
		username, password, err := promptCredentials(args)
		if err != nil {
			return err
		}

		if err := services.Session.Register(cmd.Context(), username, password); err != nil {
			return err
		}
		fmt.Printf("Registered %s. Run 'roulette login %s' to start playing.\n", username, username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Forget the stored session",
	GroupID: "session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := setupServices(cfg)
		if err != nil {
			return err
		}
		if err := services.Session.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the logged in player",
	GroupID: "session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := setupServices(cfg)
		if err != nil {
			return err
		}
		identity, err := restore(cmd.Context(), services)
		if err != nil {
			return err
		}
		if identity == nil {
			fmt.Println("Not logged in")
			return nil
		}

		role := "player"
		if identity.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%s (id %d, %s)\nBalance: %.2f\n", identity.Username, identity.ID, role, identity.Balance)
		return nil
	},
}

// restore loads the stored session. An expired session is reported and
// treated as logged out.
func restore(ctx context.Context, services *Services) (*models.Identity, error) {
	identity, err := services.Session.RestoreSession(ctx)
	if errors.Is(err, session.ErrUnauthorized) {
		fmt.Fprintln(os.Stderr, "Stored session expired, please log in again")
		return nil, nil
	}
	return identity, err
}

func promptCredentials(args []string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	username := ""
	if len(args) > 0 {
		username = args[0]
	} else {
		fmt.Fprint(os.Stderr, "Username: ")
		line, err := readLine(reader)
		if err != nil {
			return "", "", err
		}
		username = line
	}
	if username == "" {
		return "", "", errors.New("username is required")
	}

	password, err := promptPassword(reader)
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", errors.New("password is required")
	}
	return username, password, nil
}

// promptPassword reads without echo on a terminal and a plain line otherwise,
// so the password can be piped in.
func promptPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(reader)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
