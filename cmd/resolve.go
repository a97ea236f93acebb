package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/ui"
)

var ShowMetadata bool

var resolveCmd = &cobra.Command{
	Use:   "resolve [names...]",
	Short: "Resolve names to addresses",
	Long: `Resolve one or more names. Each name is routed to the resolver owning
its TLD, falling back to every resolver in priority order. Exits with 2 when
any name is not found.`,
	Example: `  uns resolve vitalik.eth
  uns resolve alice.sol --coin-type 501
  uns resolve @alice --chain-id 137 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			opts := lookupOptions()
			missing := false
			for _, name := range args {
				if !ShowMetadata && !config.JSONOutput {
					ui.WarnConfusable(u, name)
				}
				stop := u.Spinner(fmt.Sprintf("Resolving %s", name))
				resolve := svc.Resolve
				if ShowMetadata {
					resolve = svc.ResolveWithMetadata
				}
				res, err := resolve(ctx, name, opts)
				stop()
				if err != nil {
					return err
				}
				if res == nil {
					missing = true
				}
				if config.JSONOutput {
					if err := u.JSON(res); err != nil {
						return err
					}
					continue
				}
				ui.ShowResolution(u, name, res)
			}
			if missing {
				return errNotFound
			}
			return nil
		})
	},
}

func init() {
	AddLookupFlags(resolveCmd)
	resolveCmd.Flags().BoolVarP(&ShowMetadata, "metadata", "m", false, "Also show what the resolver knows about the name and look-alike warnings.")
	rootCmd.AddCommand(resolveCmd)
}
