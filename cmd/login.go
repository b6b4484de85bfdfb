// File: cmd/login.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nyxaris9/socialup-cli/internal/observability"
	"github.com/nyxaris9/socialup-cli/internal/platform"
	"github.com/nyxaris9/socialup-cli/internal/session"
	"github.com/nyxaris9/socialup-cli/internal/store"
	"github.com/nyxaris9/socialup-cli/pkg/browser"
)

func newLoginCmd() *cobra.Command {
	var (
		platformType int
		accountLabel string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Acquire a login session for a platform account",
		Long: `Opens a visible browser on the platform's login page and waits for you to
complete the login. On success the session is saved and an account record is
created. Status events are printed as JSON lines.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			orch := session.NewOrchestrator(cfg, registry, launcher, st.Accounts, logger)

			var failed bool
			for ev := range orch.Login(ctx, platformType, accountLabel) {
				fmt.Println(ev.JSON())
				if ev.Terminal() && ev.Code != session.CodeOK {
					failed = true
				}
			}
			if failed {
				logger.Error("Login did not complete",
					zap.Int("type", platformType),
					zap.String("account", accountLabel),
				)
				return fmt.Errorf("login failed")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&platformType, "type", "t", 0, "platform type code (see 'socialup platforms')")
	cmd.Flags().StringVarP(&accountLabel, "account", "a", "", "account label for the new session")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func init() {
	rootCmd.AddCommand(newLoginCmd())
}
