// File: cmd/check.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyxaris9/socialup-cli/internal/observability"
	"github.com/nyxaris9/socialup-cli/internal/platform"
	"github.com/nyxaris9/socialup-cli/internal/session"
	"github.com/nyxaris9/socialup-cli/internal/store"
	"github.com/nyxaris9/socialup-cli/pkg/browser"
)

func newCheckCmd() *cobra.Command {
	var (
		accountID int64
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether stored sessions are still valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && accountID == 0 {
				return fmt.Errorf("either --id or --all is required")
			}

			ctx := cmd.Context()
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

			registry := platform.NewRegistry()
			launcher := browser.NewLauncher(cfg.Browser, logger)
			validator := session.NewValidator(cfg, registry, launcher, logger)

			var accounts []store.Account
			if all {
				accounts, err = st.Accounts.List(ctx)
				if err != nil {
					return err
				}
			} else {
				acc, err := st.Accounts.Get(ctx, accountID)
				if err != nil {
					return err
				}
				accounts = []store.Account{*acc}
			}

			if len(accounts) == 0 {
				fmt.Println("no accounts stored")
				return nil
			}

			results := validator.CheckAll(ctx, accounts)
			for _, acc := range accounts {
				state := "INVALID"
				if results[acc.ID] {
					state = "VALID"
				}
				fmt.Printf("%-4d type=%d account=%-20s %s\n", acc.ID, acc.Type, acc.UserName, state)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "id", 0, "check a single account by id")
	cmd.Flags().BoolVar(&all, "all", false, "check every stored account")
	return cmd
}

func init() {
	rootCmd.AddCommand(newCheckCmd())
}
