// File: cmd/tasks.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyxaris9/socialup-cli/internal/observability"
	"github.com/nyxaris9/socialup-cli/internal/platform"
	"github.com/nyxaris9/socialup-cli/internal/store"
	"github.com/nyxaris9/socialup-cli/internal/task"
)

func newTasksCmd() *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List publish task records",
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

			svc := task.NewService(st.Tasks, platform.NewRegistry(), logger)

			var tasks []store.PublishTask
			if batchID != "" {
				tasks, err = svc.ListBatch(cmd.Context(), batchID)
			} else {
				tasks, err = svc.List(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println("no publish tasks recorded")
				return nil
			}

			for _, t := range tasks {
				line := fmt.Sprintf("%-4d batch=%.8s file=%-24s %s/%s %s",
					t.ID, t.TaskID, t.Filename, t.PlatformName, t.AccountName, t.Status)
				if t.ErrorMsg.Valid && t.ErrorMsg.String != "" {
					line += " error=" + t.ErrorMsg.String
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "only show rows of one batch id")
	return cmd
}

func init() {
	rootCmd.AddCommand(newTasksCmd())
}
