// File: cmd/accounts.go
package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nyxaris9/socialup-cli/internal/account"
	"github.com/nyxaris9/socialup-cli/internal/observability"
	"github.com/nyxaris9/socialup-cli/internal/platform"
	"github.com/nyxaris9/socialup-cli/internal/store"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List and delete stored accounts",
	}
	cmd.AddCommand(newAccountsListCmd(), newAccountsDeleteCmd())
	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DatabasePath(), logger)
			if err != nil {
				return err
			}
			defer st.Close()

			svc := account.NewService(st.Accounts, cfg.SessionDir(), logger)
			accounts, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				fmt.Println("no accounts stored")
				return nil
			}

			registry := platform.NewRegistry()
			for _, acc := range accounts {
				name := "unknown"
				if p, ok := registry.ByType(acc.Type); ok {
					name = p.Key
				}
				fmt.Printf("%-4d %-12s account=%-20s file=%s\n", acc.ID, name, acc.UserName, acc.FilePath)
			}
			return nil
		},
	}
}

func newAccountsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account and its stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}

			logger := observability.GetLogger()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DatabasePath(), logger)
			if err != nil {
				return err
			}
			defer st.Close()

			svc := account.NewService(st.Accounts, cfg.SessionDir(), logger)
			if err := svc.Delete(cmd.Context(), id); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("account %d not found", id)
				}
				return err
			}
			fmt.Printf("account %d deleted\n", id)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newAccountsCmd())
}
