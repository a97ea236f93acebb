package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/ui"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "Complete a partial name from the resolvers that can suggest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			suggestions := svc.Suggest(args[0], config.Limit)
			if config.JSONOutput {
				return u.JSON(suggestions)
			}
			if len(suggestions) == 0 {
				u.Error("No suggestions for %s", args[0])
				return errNotFound
			}
			for _, s := range suggestions {
				u.Info("%s", s)
			}
			return nil
		})
	},
}

func init() {
	suggestCmd.Flags().IntVarP(&config.Limit, "limit", "l", 10, "Maximum number of suggestions.")
	suggestCmd.Flags().BoolVarP(&config.JSONOutput, "json", "j", false, "Print results as JSON.")
	rootCmd.AddCommand(suggestCmd)
}
