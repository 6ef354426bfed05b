package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mcdev12/roulette/go/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "roulette <command>",
	Short:         "Terminal client for the live roulette table",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Could not load .env file")
		}

		c, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if serverURL != "" {
			c.Server.BaseURL = serverURL
			if err := c.Validate(); err != nil {
				return err
			}
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ROULETTE_CONFIG"), "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (overrides config)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "session", Title: "Session:"},
		&cobra.Group{ID: "game", Title: "Game:"},
		&cobra.Group{ID: "admin", Title: "Administration:"},
	)

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// Game
	rootCmd.AddCommand(playCmd)

	// Administration
	rootCmd.AddCommand(adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
