// File: cmd/platforms.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyxaris9/socialup-cli/internal/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms and their type codes",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range platform.NewRegistry().All() {
			fmt.Printf("%-3d %-12s %s\n", p.Type, p.Key, p.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}
