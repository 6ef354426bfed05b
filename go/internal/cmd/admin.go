package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/mcdev12/roulette/go/clients/casino_api_client"
	"github.com/mcdev12/roulette/go/internal/protocol"
	"github.com/spf13/cobra"
)

var errNotAdmin = errors.New("admin privileges required")

var historyLimit int

var adminCmd = &cobra.Command{
	Use:     "admin",
	Short:   "Manage players and inspect spins (admins only)",
	GroupID: "admin",
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all players",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, token, err := adminSession(cmd.Context())
		if err != nil {
			return err
		}
		users, err := services.API.ListUsers(cmd.Context(), token)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tBALANCE\tADMIN")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%t\n", u.ID, u.Username, u.Balance, u.IsAdmin)
		}
		return w.Flush()
	},
}

var adminFundsCmd = &cobra.Command{
	Use:   "funds <user-id> <add|remove|set> <amount>",
	Short: "Change a player's balance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		amount, err := strconv.ParseFloat(args[2], 64)
		if err != nil || amount < 0 {
			return fmt.Errorf("invalid amount %q", args[2])
		}

		services, token, err := adminSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := services.API.ManageFunds(cmd.Context(), token, casino_api_client.FundOperation{
			UserID:    userID,
			Amount:    amount,
			Operation: args[1],
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s now has %.2f\n", resp.Message, resp.Username, resp.NewBalance)
		return nil
	},
}

var adminHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent spins and colour statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, token, err := adminSession(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := services.API.SpinHistory(cmd.Context(), token, historyLimit)
		if err != nil {
			return err
		}

		fmt.Printf("Total spins: %d\n", resp.TotalSpins)
		colors := make([]protocol.Color, 0, len(resp.Statistics))
		for c := range resp.Statistics {
			colors = append(colors, c)
		}
		sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })
		for _, c := range colors {
			fmt.Printf("  %s: %d\n", c, resp.Statistics[c])
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNUMBER\tCOLOR\tTIME")
		for _, s := range resp.History {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", s.ID, s.Number, s.Color, s.Timestamp)
		}
		return w.Flush()
	},
}

func init() {
	adminHistoryCmd.Flags().IntVar(&historyLimit, "limit", casino_api_client.DefaultHistoryLimit, "number of spins to show")

	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminFundsCmd)
	adminCmd.AddCommand(adminHistoryCmd)
}

// adminSession restores the stored session and checks it is privileged.
func adminSession(ctx context.Context) (*Services, string, error) {
	services, err := setupServices(cfg)
	if err != nil {
		return nil, "", err
	}
	identity, err := restore(ctx, services)
	if err != nil {
		return nil, "", err
	}
	if identity == nil {
		return nil, "", errors.New("not logged in")
	}
	if !identity.IsAdmin {
		return nil, "", errNotAdmin
	}
	return services, services.Session.Token(), nil
}
